package domain

import "testing"

func TestCanTransitionPipelineChain(t *testing.T) {
	chain := []DocumentStatus{
		StatusUploading, StatusProcessing, StatusExtracting,
		StatusValidating, StatusNeedsReview,
	}
	for i := 0; i < len(chain)-1; i++ {
		if !CanTransition(chain[i], chain[i+1]) {
			t.Fatalf("expected %s -> %s to be legal", chain[i], chain[i+1])
		}
	}
	if CanTransition(StatusUploading, StatusValidating) {
		t.Fatalf("expected stage skip to be illegal")
	}
}

func TestCanTransitionReviewOutcomes(t *testing.T) {
	for _, to := range []DocumentStatus{StatusVerified, StatusRejected, StatusCorrectionRequired} {
		if !CanTransition(StatusNeedsReview, to) {
			t.Fatalf("expected needs_review -> %s to be legal", to)
		}
	}
	if !CanTransition(StatusCorrectionRequired, StatusExtracting) {
		t.Fatalf("expected correction_required to re-enter extraction")
	}
}

func TestCanTransitionErrorReachability(t *testing.T) {
	for _, from := range []DocumentStatus{
		StatusUploading, StatusProcessing, StatusExtracting,
		StatusValidating, StatusNeedsReview, StatusCorrectionRequired,
	} {
		if !CanTransition(from, StatusError) {
			t.Fatalf("expected %s -> error to be legal", from)
		}
	}
	if CanTransition(StatusVerified, StatusError) || CanTransition(StatusRejected, StatusError) {
		t.Fatalf("terminal statuses must not move to error")
	}
	if CanTransition(StatusError, StatusError) {
		t.Fatalf("error -> error must be rejected")
	}
	if !CanTransition(StatusError, StatusUploading) {
		t.Fatalf("expected error -> uploading retry path")
	}
}

func TestTerminalStatusesAreFinal(t *testing.T) {
	all := []DocumentStatus{
		StatusUploading, StatusProcessing, StatusExtracting, StatusValidating,
		StatusNeedsReview, StatusVerified, StatusRejected, StatusCorrectionRequired, StatusError,
	}
	for _, from := range []DocumentStatus{StatusVerified, StatusRejected} {
		for _, to := range all {
			if CanTransition(from, to) {
				t.Fatalf("expected no transition out of %s, %s allowed", from, to)
			}
		}
	}
}

func TestReviewOutcomeMapping(t *testing.T) {
	cases := map[ReviewAction]DocumentStatus{
		ActionApprove:           StatusVerified,
		ActionReject:            StatusRejected,
		ActionRequestCorrection: StatusCorrectionRequired,
	}
	for action, want := range cases {
		got, ok := ReviewOutcome(action)
		if !ok || got != want {
			t.Fatalf("ReviewOutcome(%s) = %s, %v; want %s", action, got, ok, want)
		}
	}
	if _, ok := ReviewOutcome("escalate"); ok {
		t.Fatalf("expected unknown action to be rejected")
	}
}

func TestProfileFromFieldsDistinguishesMissingFromZero(t *testing.T) {
	categorized := CategorizedFieldSet{
		{Name: "Land Details", Fields: []ExtractedField{
			{Key: "landArea", Value: 0.0, Confidence: 0.9},
		}},
	}
	profile := ProfileFromFields(categorized)

	if profile.LandHolding == nil || *profile.LandHolding != 0 {
		t.Fatalf("expected explicit zero land holding, got %v", profile.LandHolding)
	}
	if profile.AnnualIncome != nil {
		t.Fatalf("expected missing income to stay nil")
	}
	if _, present := profile.Attribute("annualIncome"); present {
		t.Fatalf("expected annualIncome attribute to be absent")
	}
	if v, present := profile.Attribute("landHolding"); !present || v != 0.0 {
		t.Fatalf("expected landHolding 0, got %v present=%v", v, present)
	}
}

func TestProfileFromFieldsBankAccountAndNameFallback(t *testing.T) {
	categorized := CategorizedFieldSet{
		{Name: "Identity Details", Fields: []ExtractedField{
			{Key: "ownerName", Value: "Sukhram Majhi", Confidence: 0.8},
		}},
		{Name: "Financial Details", Fields: []ExtractedField{
			{Key: "accountNumber", Value: "123456789012", Confidence: 0.9},
		}},
	}
	profile := ProfileFromFields(categorized)

	if profile.Name != "Sukhram Majhi" {
		t.Fatalf("expected ownerName fallback, got %q", profile.Name)
	}
	if profile.HasBankAccount == nil || !*profile.HasBankAccount {
		t.Fatalf("expected bank account presence to be derived")
	}
}
