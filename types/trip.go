package types

// VisaArea is the visa jurisdiction a destination country falls under.
type VisaArea string

const (
	VisaAreaUS       VisaArea = "US"
	VisaAreaSchengen VisaArea = "Schengen"
	VisaAreaUK       VisaArea = "UK"
)

// String provides a string representation of the visa area
func (a VisaArea) String() string {
	return string(a)
}

// IsValid checks if the area is one of the supported visa areas
func (a VisaArea) IsValid() bool {
	switch a {
	case VisaAreaUS, VisaAreaSchengen, VisaAreaUK:
		return true
	default:
		return false
	}
}

// VisaTypeLabel is the display label of the visa type derived from a visa area.
type VisaTypeLabel string

const (
	VisaTypeUSB1B2     VisaTypeLabel = "US B1/B2"
	VisaTypeSchengenC  VisaTypeLabel = "Schengen C Short-Stay"
	VisaTypeUKStandard VisaTypeLabel = "UK Standard Visitor"
)

func (l VisaTypeLabel) String() string {
	return string(l)
}

func (l VisaTypeLabel) IsValid() bool {
	switch l {
	case VisaTypeUSB1B2, VisaTypeSchengenC, VisaTypeUKStandard:
		return true
	default:
		return false
	}
}

type Purpose string

const (
	PurposeTourist  Purpose = "Tourist"
	PurposeBusiness Purpose = "Business"
)

func (p Purpose) IsValid() bool {
	return p == PurposeTourist || p == PurposeBusiness
}

// DateRange holds the intended travel dates as ISO calendar dates (YYYY-MM-DD).
// Either bound may be empty while the traveler is still deciding.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// TripSelections captures one traveler's trip intent for a single application.
// Destination and VisaTypeLabel are derived fields: Destination follows
// DestinationCountryAlpha2 through the area table and VisaTypeLabel follows
// Destination. They are never set independently.
type TripSelections struct {
	// NationalityCode stores ISO alpha-3 (ICAO-compatible), e.g. CHN.
	NationalityCode string `json:"nationalityCode"`
	// DestinationCountryAlpha2 is the chosen destination country by ISO alpha-2.
	DestinationCountryAlpha2 string        `json:"destinationCountryAlpha2,omitempty"`
	Destination              VisaArea      `json:"destination,omitempty"`
	Purpose                  Purpose       `json:"purpose,omitempty"`
	Dates                    DateRange     `json:"dates"`
	VisaTypeLabel            VisaTypeLabel `json:"visaTypeLabel,omitempty"`
}

// IsFullySpecified reports whether every field the traveler fills in on the
// trip step is set: nationality, destination country, purpose and both travel
// dates. Derived fields do not count.
func (t TripSelections) IsFullySpecified() bool {
	return t.NationalityCode != "" &&
		t.DestinationCountryAlpha2 != "" &&
		t.Purpose.IsValid() &&
		t.Dates.From != "" &&
		t.Dates.To != ""
}

// TripUpdate is a partial patch of the mutable trip fields. Only non-nil
// fields are applied; derived fields are recomputed by the model and cannot
// be patched directly.
type TripUpdate struct {
	NationalityCode          *string    `json:"nationalityCode,omitempty"`
	DestinationCountryAlpha2 *string    `json:"destinationCountryAlpha2,omitempty"`
	Purpose                  *Purpose   `json:"purpose,omitempty"`
	Dates                    *DateRange `json:"dates,omitempty"`
}
