package domain

import "math"

// ApplicantProfile is the rule-engine view of a categorized extraction.
// Pointer fields distinguish "unknown" from a zero value; the engine must
// never treat missing data as disqualifying.
type ApplicantProfile struct {
	Name            string   `json:"name,omitempty"`
	FatherName      string   `json:"father_name,omitempty"`
	TribalCommunity string   `json:"tribal_community,omitempty"`
	Village         string   `json:"village,omitempty"`
	District        string   `json:"district,omitempty"`
	State           string   `json:"state,omitempty"`
	HouseholdType   string   `json:"household_type,omitempty"`
	ClaimType       string   `json:"claim_type,omitempty"`
	ClaimStatus     string   `json:"claim_status,omitempty"`
	LandHolding     *float64 `json:"land_holding,omitempty"`
	FamilySize      *int     `json:"family_size,omitempty"`
	AnnualIncome    *float64 `json:"annual_income,omitempty"`
	HasBankAccount  *bool    `json:"has_bank_account,omitempty"`
}

// Attribute resolves a rule-condition attribute name. The second return is
// false when the profile has no value for the attribute, which callers must
// surface as not_evaluated rather than ineligible.
func (p ApplicantProfile) Attribute(name string) (any, bool) {
	switch name {
	case "name":
		return strAttr(p.Name)
	case "fatherName":
		return strAttr(p.FatherName)
	case "tribalCommunity":
		return strAttr(p.TribalCommunity)
	case "village":
		return strAttr(p.Village)
	case "district":
		return strAttr(p.District)
	case "state":
		return strAttr(p.State)
	case "householdType":
		return strAttr(p.HouseholdType)
	case "claimType":
		return strAttr(p.ClaimType)
	case "claimStatus":
		return strAttr(p.ClaimStatus)
	case "landHolding":
		if p.LandHolding == nil {
			return nil, false
		}
		return *p.LandHolding, true
	case "familySize":
		if p.FamilySize == nil {
			return nil, false
		}
		return float64(*p.FamilySize), true
	case "annualIncome":
		if p.AnnualIncome == nil {
			return nil, false
		}
		return *p.AnnualIncome, true
	case "hasBankAccount":
		if p.HasBankAccount == nil {
			return nil, false
		}
		return *p.HasBankAccount, true
	default:
		return nil, false
	}
}

func strAttr(v string) (any, bool) {
	if v == "" {
		return nil, false
	}
	return v, true
}

// ProfileFromFields projects a categorized field set onto the applicant
// profile the rule engine evaluates. Absent fields stay nil/empty so the
// engine can tell missing data from a real zero.
func ProfileFromFields(categorized CategorizedFieldSet) ApplicantProfile {
	fields := categorized.Flatten()
	profile := ApplicantProfile{
		Name:            profileString(fields, "applicantName"),
		FatherName:      profileString(fields, "fatherName"),
		TribalCommunity: profileString(fields, "tribalCommunity"),
		Village:         profileString(fields, "village"),
		District:        profileString(fields, "district"),
		State:           profileString(fields, "state"),
		HouseholdType:   profileString(fields, "householdType"),
		ClaimType:       profileString(fields, "claimType"),
		ClaimStatus:     profileString(fields, "claimStatus"),
	}
	if profile.Name == "" {
		profile.Name = profileString(fields, "ownerName")
	}

	if v, ok := profileNumber(fields, "landArea"); ok {
		profile.LandHolding = &v
	}
	if v, ok := profileNumber(fields, "familySize"); ok {
		size := int(math.Round(v))
		profile.FamilySize = &size
	}
	if v, ok := profileNumber(fields, "annualIncome"); ok {
		profile.AnnualIncome = &v
	}
	if _, ok := fields["accountNumber"]; ok {
		yes := true
		profile.HasBankAccount = &yes
	}

	return profile
}

func profileString(fields FieldSet, key string) string {
	f, ok := fields[key]
	if !ok {
		return ""
	}
	s, _ := f.Value.(string)
	return s
}

func profileNumber(fields FieldSet, key string) (float64, bool) {
	f, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch v := f.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
