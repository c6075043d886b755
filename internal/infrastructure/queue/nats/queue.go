package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/vanmitra/fra-pipeline/internal/infrastructure/resilience"
)

const (
	subjectDocumentQueued = "documents.queued"
	workerQueueGroup      = "fra-pipeline-workers"
)

// Queue carries document ids between the api process (which accepts
// uploads) and the worker process (which runs the pipeline). Payloads are
// bare document ids; the worker reloads the document from the repository
// so a redelivered message never acts on stale state.
type Queue struct {
	conn     *nats.Conn
	executor *resilience.Executor
	sub      *nats.Subscription
}

func NewQueue(url string, executor *resilience.Executor) (*Queue, error) {
	conn, err := nats.Connect(url,
		nats.Name("fra-pipeline"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &Queue{conn: conn, executor: executor}, nil
}

func (q *Queue) PublishDocumentQueued(ctx context.Context, documentID string) error {
	publish := func(context.Context) error {
		if err := q.conn.Publish(subjectDocumentQueued, []byte(documentID)); err != nil {
			return wrapTemporaryIfNeeded(fmt.Errorf("publish document queued: %w", err))
		}
		if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
			return wrapTemporaryIfNeeded(fmt.Errorf("flush publish: %w", err))
		}
		return nil
	}

	if q.executor == nil {
		return publish(ctx)
	}
	return q.executor.Execute(ctx, "nats.publish_document_queued", publish, classifyQueueError)
}

// SubscribeDocumentQueued joins the shared worker queue group so documents
// are distributed across worker replicas instead of fanned out to all.
func (q *Queue) SubscribeDocumentQueued(_ context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(subjectDocumentQueued, workerQueueGroup, func(msg *nats.Msg) {
		documentID := string(msg.Data)
		if err := handler(context.Background(), documentID); err != nil {
			slog.Error("document_handler_failed", "document_id", documentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subjectDocumentQueued, err)
	}
	q.sub = sub
	return nil
}

func (q *Queue) Close() {
	if q.sub != nil {
		_ = q.sub.Unsubscribe()
	}
	if q.conn != nil {
		q.conn.Drain()
	}
}
