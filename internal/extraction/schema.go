package extraction

import (
	"regexp"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// ValueKind selects the coercion applied to a raw entity or text match.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindArea
	KindDate
	KindCoordinates
	KindBoundaries
)

// FieldSpec describes one expected field of a document type. EntityTag is
// matched against the collaborator's entity list; TextPattern is a fallback
// applied to the raw recognized text when no entity carries the tag. A field
// with neither source available is omitted from the result, never defaulted.
type FieldSpec struct {
	Key         string
	EntityTag   string
	Kind        ValueKind
	TextPattern *regexp.Regexp
	Format      *regexp.Regexp
	Mandatory   bool
}

var (
	reFatherName   = regexp.MustCompile(`(?i)(?:father'?s?\s+name|s/o)\s*[:\-]?\s*([A-Za-z][A-Za-z .]{2,40})`)
	reSurveyNumber = regexp.MustCompile(`(?i)(?:survey|khasra|gata)\s*(?:no\.?|number|num)\s*[:\-]?\s*([0-9][0-9/\-A-Za-z]*)`)
	reDistrict     = regexp.MustCompile(`(?i)district\s*[:\-]?\s*([A-Za-z][A-Za-z ]{2,40})`)
	reState        = regexp.MustCompile(`(?i)state\s*[:\-]?\s*([A-Za-z][A-Za-z ]{2,40})`)
	reFamilySize   = regexp.MustCompile(`(?i)family\s+members?\s*[:\-]?\s*(\d{1,2})`)
	reIncome       = regexp.MustCompile(`(?i)annual\s+income\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+)`)
	reAccountNum   = regexp.MustCompile(`(?i)(?:a/c|account)\s*(?:no\.?|number)?\s*[:\-]?\s*(\d{9,18})`)
	reIFSC         = regexp.MustCompile(`\b([A-Z]{4}0[A-Z0-9]{6})\b`)
	reLandArea     = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:acres?|hectares?|ha)\b`)
	reCoordinates  = regexp.MustCompile(`(-?\d{1,3}\.\d+)\s*[, ]\s*(-?\d{1,3}\.\d+)`)
	reDate         = regexp.MustCompile(`\b(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4}|\d{4}-\d{2}-\d{2})\b`)
	reClaimType    = regexp.MustCompile(`(?i)\b(individual|community)\s+(?:forest\s+)?(?:rights?|claim)\b`)
	reHouseType    = regexp.MustCompile(`(?i)\b(kutcha|pucca|semi-pucca)\b`)

	fmtAadhaar = regexp.MustCompile(`^\d{4}\s?\d{4}\s?\d{4}$`)
	fmtIFSC    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// schemas maps each document type to its expected field set, in the order
// fields are reported and scored.
var schemas = map[domain.DocumentType][]FieldSpec{
	domain.TypeFRAApplication: {
		{Key: "applicantName", EntityTag: "PERSON", Kind: KindString, Mandatory: true},
		{Key: "fatherName", TextPattern: reFatherName, Kind: KindString, Mandatory: true},
		{Key: "village", EntityTag: "LOCATION", Kind: KindString, Mandatory: true},
		{Key: "district", TextPattern: reDistrict, Kind: KindString},
		{Key: "state", TextPattern: reState, Kind: KindString},
		{Key: "tribalCommunity", EntityTag: "COMMUNITY", Kind: KindString},
		{Key: "landArea", EntityTag: "AREA", TextPattern: reLandArea, Kind: KindArea, Mandatory: true},
		{Key: "surveyNumber", TextPattern: reSurveyNumber, Kind: KindString, Mandatory: true},
		{Key: "claimType", EntityTag: "CLAIM_TYPE", TextPattern: reClaimType, Kind: KindString},
		{Key: "householdType", TextPattern: reHouseType, Kind: KindString},
		{Key: "familySize", TextPattern: reFamilySize, Kind: KindNumber},
		{Key: "annualIncome", TextPattern: reIncome, Kind: KindNumber},
		{Key: "applicationDate", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
		{Key: "coordinates", EntityTag: "GPS", TextPattern: reCoordinates, Kind: KindCoordinates},
		{Key: "boundaries", Kind: KindBoundaries},
	},
	domain.TypeIdentityProof: {
		{Key: "applicantName", EntityTag: "PERSON", Kind: KindString, Mandatory: true},
		{Key: "documentNumber", EntityTag: "ID", Kind: KindString, Format: fmtAadhaar, Mandatory: true},
		{Key: "dateOfBirth", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
		{Key: "address", EntityTag: "LOCATION", Kind: KindString},
	},
	domain.TypeLandDocuments: {
		{Key: "ownerName", EntityTag: "PERSON", Kind: KindString, Mandatory: true},
		{Key: "surveyNumber", TextPattern: reSurveyNumber, Kind: KindString, Mandatory: true},
		{Key: "landArea", EntityTag: "AREA", TextPattern: reLandArea, Kind: KindArea, Mandatory: true},
		{Key: "village", EntityTag: "LOCATION", Kind: KindString},
		{Key: "landType", EntityTag: "LAND_TYPE", Kind: KindString},
		{Key: "coordinates", EntityTag: "GPS", TextPattern: reCoordinates, Kind: KindCoordinates},
		{Key: "boundaries", Kind: KindBoundaries},
		{Key: "registrationDate", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
	},
	domain.TypeTribalCertificate: {
		{Key: "applicantName", EntityTag: "PERSON", Kind: KindString, Mandatory: true},
		{Key: "tribalCommunity", EntityTag: "COMMUNITY", Kind: KindString, Mandatory: true},
		{Key: "certificateNumber", EntityTag: "ID", Kind: KindString},
		{Key: "issueDate", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
		{Key: "issuingAuthority", EntityTag: "ORG", Kind: KindString},
	},
	domain.TypeResidenceProof: {
		{Key: "applicantName", EntityTag: "PERSON", Kind: KindString, Mandatory: true},
		{Key: "address", EntityTag: "LOCATION", Kind: KindString, Mandatory: true},
		{Key: "village", EntityTag: "VILLAGE", Kind: KindString},
		{Key: "residenceSince", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
	},
	domain.TypeBankDetails: {
		{Key: "accountHolder", EntityTag: "PERSON", Kind: KindString, Mandatory: true},
		{Key: "accountNumber", EntityTag: "ACCOUNT", TextPattern: reAccountNum, Kind: KindString, Mandatory: true},
		{Key: "ifscCode", EntityTag: "IFSC", TextPattern: reIFSC, Kind: KindString, Format: fmtIFSC, Mandatory: true},
		{Key: "bankName", EntityTag: "ORG", Kind: KindString},
		{Key: "branchName", EntityTag: "BRANCH", Kind: KindString},
	},
	domain.TypeCommunityRights: {
		{Key: "communityName", EntityTag: "COMMUNITY", Kind: KindString, Mandatory: true},
		{Key: "village", EntityTag: "LOCATION", Kind: KindString, Mandatory: true},
		{Key: "rightType", EntityTag: "RIGHT_TYPE", Kind: KindString},
		{Key: "gramSabha", EntityTag: "ORG", Kind: KindString},
		{Key: "resourceArea", EntityTag: "AREA", TextPattern: reLandArea, Kind: KindArea},
		{Key: "resolutionDate", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
	},
	domain.TypeHistoricalRecords: {
		{Key: "recordType", EntityTag: "RECORD_TYPE", Kind: KindString},
		{Key: "recordDate", EntityTag: "DATE", TextPattern: reDate, Kind: KindDate},
		{Key: "village", EntityTag: "LOCATION", Kind: KindString},
		{Key: "custodian", EntityTag: "ORG", Kind: KindString},
	},
}

// Schema returns the expected field specs for a document type. Unknown types
// get an empty schema: extraction then yields nothing and flags low yield.
func Schema(t domain.DocumentType) []FieldSpec {
	return schemas[t]
}

// ExpectedKeys lists the schema keys for a document type in declared order.
func ExpectedKeys(t domain.DocumentType) []string {
	specs := schemas[t]
	keys := make([]string, 0, len(specs))
	for _, s := range specs {
		keys = append(keys, s.Key)
	}
	return keys
}

// MandatoryKeys lists the keys whose absence should raise a warning.
func MandatoryKeys(t domain.DocumentType) []string {
	var keys []string
	for _, s := range schemas[t] {
		if s.Mandatory {
			keys = append(keys, s.Key)
		}
	}
	return keys
}
