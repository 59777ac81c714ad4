package services

import (
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/shopspring/decimal"
)

// DemoExtraction is the fixed record delivered by the mock extraction
// pipeline. There is no real OCR; this stands in for a parsed passport of a
// demo applicant.
func DemoExtraction() types.ExtractionResult {
	return types.ExtractionResult{
		MRZ:            "P<CHNWANG<<XIAOMING<<<<<<<<<<<<<<<<<<<<<<<\nG12345678<3CHN9001012M3001012<<<<<<<<<<<<<<08",
		FullName:       "WONG Ka Ming",
		DateOfBirth:    "1992-05-15",
		PassportNumber: "G12345678",
		Nationality:    "China",
		Expiry:         "2031-12-29",
		Address:        "Room 1203, Tower 2, Jianguo Garden, Chaoyang, Beijing, China",
		PhoneNumber:    "+852 9237 4207",
		BankBalanceHKD: decimal.NewFromInt(285000),
	}
}

// DemoMapping is the fixed extracted-field-to-form-field mapping delivered
// alongside DemoExtraction.
func DemoMapping() []types.MappingItem {
	return []types.MappingItem{
		{ExtractedKey: "fullName", FormField: "applicant_name", Value: "WONG Ka Ming", Confidence: types.ConfidenceHigh},
		{ExtractedKey: "dateOfBirth", FormField: "date_of_birth", Value: "1992-05-15", Confidence: types.ConfidenceHigh},
		{ExtractedKey: "passportNumber", FormField: "passport_number", Value: "H9876543", Confidence: types.ConfidenceMedium},
		{ExtractedKey: "nationality", FormField: "passport_nationality", Value: "China", Confidence: types.ConfidenceHigh},
		{ExtractedKey: "expiry", FormField: "passport_expiry", Value: "2031-12-29", Confidence: types.ConfidenceHigh},
		{ExtractedKey: "address", FormField: "residential_address", Value: "Room 1203, Tower 2, Jianguo Garden, Chaoyang, Beijing, China", Confidence: types.ConfidenceMedium},
		{ExtractedKey: "phoneNumber", FormField: "phone_number", Value: "+852 92374207", Confidence: types.ConfidenceMedium},
		{ExtractedKey: "fullName", FormField: "email_address", Value: "kmwong@gmail.com", Confidence: types.ConfidenceLow},
		{ExtractedKey: "nationality", FormField: "purpose_of_trip", Value: "Tourism", Confidence: types.ConfidenceLow},
		{ExtractedKey: "expiry", FormField: "arrival_date", Value: "2025-12-15", Confidence: types.ConfidenceLow},
		{ExtractedKey: "expiry", FormField: "departure_date", Value: "2026-01-05", Confidence: types.ConfidenceLow},
		{ExtractedKey: "bankBalanceHKD", FormField: "financial_proof_amount", Value: "285000", Confidence: types.ConfidenceHigh},
	}
}
