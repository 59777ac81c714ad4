package types

type ChecklistCategory string

const (
	CategoryRequired    ChecklistCategory = "Required"
	CategoryRecommended ChecklistCategory = "Recommended"
)

func (c ChecklistCategory) IsValid() bool {
	return c == CategoryRequired || c == CategoryRecommended
}

// ChecklistItem is one document or task requirement generated for a visa type.
type ChecklistItem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    ChecklistCategory `json:"category"`
	// DueDate is an ISO calendar date computed from the trip end date and the
	// rule's lead time.
	DueDate string `json:"dueDate"`
	Done    bool   `json:"done"`
}

// ChecklistState tracks live completion per item id, overlaying the Done flag
// baked into freshly generated items. Ids absent from the map are not done.
type ChecklistState map[string]bool
