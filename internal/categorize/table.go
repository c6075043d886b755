package categorize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// CategoryDef declares one category and the field keys it owns, in display
// order. The table is data, not code: deployments swap the YAML file to
// evolve field grouping without a rebuild.
type CategoryDef struct {
	Name string   `yaml:"name"`
	Keys []string `yaml:"keys"`
}

type Table struct {
	Categories []CategoryDef `yaml:"categories"`
}

// LoadTable reads a category table from YAML. An empty path yields the
// built-in default table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse category table: %w", err)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

func (t *Table) validate() error {
	if len(t.Categories) == 0 {
		return fmt.Errorf("category table: no categories declared")
	}
	seen := make(map[string]string)
	for _, cat := range t.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category table: category with empty name")
		}
		if cat.Name == domain.CategoryOther {
			return fmt.Errorf("category table: %q is reserved", domain.CategoryOther)
		}
		for _, key := range cat.Keys {
			if owner, dup := seen[key]; dup {
				return fmt.Errorf("category table: key %q appears in %q and %q", key, owner, cat.Name)
			}
			seen[key] = cat.Name
		}
	}
	return nil
}

// DefaultTable is the built-in key-to-category mapping covering every key
// the extraction schemas can produce.
func DefaultTable() *Table {
	return &Table{Categories: []CategoryDef{
		{Name: "Identity Details", Keys: []string{
			"applicantName", "fatherName", "ownerName", "accountHolder",
			"dateOfBirth", "documentNumber", "certificateNumber",
		}},
		{Name: "Location Details", Keys: []string{
			"village", "district", "state", "address", "coordinates",
		}},
		{Name: "Land Details", Keys: []string{
			"landArea", "surveyNumber", "boundaries", "landType",
			"resourceArea", "registrationDate",
		}},
		{Name: "Rights & Claims", Keys: []string{
			"claimType", "claimStatus", "rightType", "applicationDate",
			"resolutionDate", "recordType", "recordDate",
		}},
		{Name: "Financial Details", Keys: []string{
			"accountNumber", "ifscCode", "bankName", "branchName",
		}},
		{Name: "Community Details", Keys: []string{
			"tribalCommunity", "communityName", "gramSabha", "issuingAuthority",
			"custodian", "issueDate", "residenceSince",
		}},
		{Name: "Scheme Hints", Keys: []string{
			"householdType", "familySize", "annualIncome",
		}},
	}}
}
