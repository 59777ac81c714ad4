package types

import "github.com/shopspring/decimal"

// ExtractionResult is the fixed-shape record of identity fields pulled from an
// uploaded document. Fields stay empty until the extraction pipeline delivers.
type ExtractionResult struct {
	MRZ            string          `json:"mrz"`
	FullName       string          `json:"fullName"`
	DateOfBirth    string          `json:"dateOfBirth"`
	PassportNumber string          `json:"passportNumber"`
	Nationality    string          `json:"nationality"`
	Expiry         string          `json:"expiry"`
	Address        string          `json:"address"`
	PhoneNumber    string          `json:"phoneNumber"`
	BankBalanceHKD decimal.Decimal `json:"bankBalanceHKD"`
}

// IsEmpty reports whether no field has been populated yet.
func (r ExtractionResult) IsEmpty() bool {
	return r.MRZ == "" && r.FullName == "" && r.DateOfBirth == "" &&
		r.PassportNumber == "" && r.Nationality == "" && r.Expiry == "" &&
		r.Address == "" && r.PhoneNumber == "" && r.BankBalanceHKD.IsZero()
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MappingItem associates one extracted field with a destination form field.
type MappingItem struct {
	ExtractedKey string     `json:"extractedKey"`
	FormField    string     `json:"formField"`
	Value        string     `json:"value"`
	Confidence   Confidence `json:"confidence,omitempty"`
}

// MappingOverrides holds user-edited replacement values per form field. An
// override always wins over the mapping item's baked-in value.
type MappingOverrides map[string]string
