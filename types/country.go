package types

// Country is the normalized country record served to the trip-setup UI.
type Country struct {
	Name         string `json:"name"`
	OfficialName string `json:"officialName,omitempty"`
	Alpha2       string `json:"alpha2"`
	Alpha3       string `json:"alpha3"`
	FlagURL      string `json:"flagUrl"`
	FlagPngURL   string `json:"flagPngUrl,omitempty"`
	Demonym      string `json:"demonym,omitempty"`
}
