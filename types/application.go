package types

// ApplicationMeta is the summary record kept per application in the
// application list. It mirrors the current working state on every mutation.
type ApplicationMeta struct {
	ID            string        `json:"id"`
	Destination   VisaArea      `json:"destination,omitempty"`
	VisaTypeLabel VisaTypeLabel `json:"visaTypeLabel,omitempty"`
	Purpose       Purpose       `json:"purpose,omitempty"`
	Dates         DateRange     `json:"dates"`
	// ProgressPct is checklist completion rounded to the nearest integer
	// percent. An empty checklist reads as 0.
	ProgressPct int `json:"progressPct"`
}

// WorkingState is the full substate of the current application, as returned
// to the wizard UI in one snapshot.
type WorkingState struct {
	Applications     []ApplicationMeta `json:"applications"`
	CurrentAppID     string            `json:"currentAppId,omitempty"`
	Trip             *TripSelections   `json:"trip,omitempty"`
	Checklist        []ChecklistItem   `json:"checklist"`
	ChecklistState   ChecklistState    `json:"checklistState"`
	Uploads          []UploadMeta      `json:"uploads"`
	Extraction       ExtractionResult  `json:"extraction"`
	Mapping          []MappingItem     `json:"mapping"`
	MappingOverrides MappingOverrides  `json:"mappingOverrides"`
}
