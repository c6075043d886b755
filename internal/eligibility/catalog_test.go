package eligibility

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

const validCatalogYAML = `
version: "test-1"
schemes:
  - id: pm-kisan
    name: PM-KISAN Income Support
    category: income_support
    conditions:
      - attribute: landHolding
        operator: lte
        value: 2.0
    benefit:
      type: fixed
      rate: 6000
      period: annual
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCatalogValid(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, validCatalogYAML))
	require.NoError(t, err)
	require.Equal(t, "test-1", catalog.Version)
	require.Len(t, catalog.Schemes, 1)
	require.Equal(t, "pm-kisan", catalog.Schemes[0].ID)
	require.Equal(t, domain.BenefitFixed, catalog.Schemes[0].Benefit.Type)
}

func TestLoadCatalogRejectsUnknownOperator(t *testing.T) {
	path := writeCatalog(t, `
version: "bad"
schemes:
  - id: s1
    name: S1
    conditions:
      - attribute: landHolding
        operator: approximately
        value: 2
    benefit: {type: fixed, rate: 100, period: annual}
`)
	_, err := LoadCatalog(path)
	require.Error(t, err)
	require.True(t, domain.IsKind(err, domain.ErrCatalogLoad))
}

func TestLoadCatalogRejectsDuplicateIDs(t *testing.T) {
	path := writeCatalog(t, `
version: "bad"
schemes:
  - id: s1
    name: S1
    conditions: [{attribute: village, operator: exists}]
    benefit: {type: fixed, rate: 100, period: annual}
  - id: s1
    name: S1 again
    conditions: [{attribute: village, operator: exists}]
    benefit: {type: fixed, rate: 100, period: annual}
`)
	_, err := LoadCatalog(path)
	require.True(t, domain.IsKind(err, domain.ErrCatalogLoad))
}

func TestLoadCatalogRejectsBadBenefit(t *testing.T) {
	path := writeCatalog(t, `
version: "bad"
schemes:
  - id: s1
    name: S1
    conditions: [{attribute: village, operator: exists}]
    benefit: {type: lump_sum, rate: 100, period: annual}
`)
	_, err := LoadCatalog(path)
	require.True(t, domain.IsKind(err, domain.ErrCatalogLoad))
}

func TestCatalogStoreReloadKeepsOldVersionOnFailure(t *testing.T) {
	path := writeCatalog(t, validCatalogYAML)
	store, err := NewCatalogStore(path)
	require.NoError(t, err)
	require.Equal(t, "test-1", store.Current().Version)

	require.NoError(t, os.WriteFile(path, []byte("schemes: [broken"), 0o600))
	_, err = store.Reload()
	require.Error(t, err)
	require.Equal(t, "test-1", store.Current().Version, "failed reload must not disturb the active catalog")

	require.NoError(t, os.WriteFile(path, []byte(validCatalogYAML), 0o600))
	updated, err := store.Reload()
	require.NoError(t, err)
	require.Same(t, updated, store.Current())
}

func TestShippedCatalogLoads(t *testing.T) {
	catalog, err := LoadCatalog(filepath.Join("..", "..", "configs", "schemes.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Schemes)
}
