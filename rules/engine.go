package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VisaTrek/visa-trek-backend/logger"
	"github.com/VisaTrek/visa-trek-backend/types"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultTableYAML []byte

//go:embed schema.json
var tableSchemaJSON []byte

const isoDate = "2006-01-02"

// Rule is one row of the checklist rule table.
type Rule struct {
	ID          string                  `yaml:"id"`
	Title       string                  `yaml:"title"`
	Category    types.ChecklistCategory `yaml:"category"`
	LeadDays    int                     `yaml:"leadDays"`
	Description string                  `yaml:"description"`
}

// Table holds the ordered rule lists keyed by visa-type label.
type Table map[types.VisaTypeLabel][]Rule

type tableFile struct {
	Rules map[string][]Rule `yaml:"rules"`
}

// Engine generates checklists from the rule table. The clock is injectable so
// tests can pin "today" when the trip has no end date yet.
type Engine struct {
	table Table
	now   func() time.Time
}

// NewEngine builds an engine over an already validated table.
func NewEngine(table Table) *Engine {
	return &Engine{table: table, now: time.Now}
}

// NewDefaultEngine builds an engine over the embedded rule table. The embedded
// table is validated at build time by the package tests, so a failure here
// means a corrupted binary.
func NewDefaultEngine() *Engine {
	table, err := ParseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rule table invalid: %v", err))
	}
	return NewEngine(table)
}

// LoadTableFile reads and validates a rule table from a YAML file, for
// deployments that override the embedded demo rules.
func LoadTableFile(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return ParseTable(raw)
}

// ParseTable validates raw YAML against the table schema and decodes it.
func ParseTable(raw []byte) (Table, error) {
	// gojsonschema speaks JSON, so route the YAML document through a generic
	// decode before validating.
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("convert rule table: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(tableSchemaJSON),
		gojsonschema.NewBytesLoader(asJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("validate rule table: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("rule table failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode rule table: %w", err)
	}

	table := make(Table, len(file.Rules))
	for label, ruleList := range file.Rules {
		table[types.VisaTypeLabel(label)] = ruleList
	}
	return table, nil
}

// GenerateChecklist maps the rule list for the given visa-type label to
// checklist items, preserving the table's declared order. The due date of each
// item is the trip end date (or today when unset) minus the rule's lead days.
// An empty label yields an empty checklist. A valid label missing from the
// table is a configuration gap: it is logged and yields an empty checklist
// rather than an error.
func (e *Engine) GenerateChecklist(label types.VisaTypeLabel, dates types.DateRange) []types.ChecklistItem {
	if label == "" {
		return []types.ChecklistItem{}
	}

	ruleList, ok := e.table[label]
	if !ok {
		logger.GetLogger().Warnw("No checklist rules configured for visa type",
			"visaTypeLabel", label.String(),
		)
		return []types.ChecklistItem{}
	}

	anchor := e.now()
	if dates.To != "" {
		if parsed, err := time.Parse(isoDate, dates.To); err == nil {
			anchor = parsed
		} else {
			logger.GetLogger().Warnw("Invalid trip end date, anchoring due dates to today",
				"to", dates.To, "error", err,
			)
		}
	}

	items := make([]types.ChecklistItem, 0, len(ruleList))
	for _, rule := range ruleList {
		items = append(items, types.ChecklistItem{
			ID:          rule.ID,
			Title:       rule.Title,
			Description: rule.Description,
			Category:    rule.Category,
			DueDate:     anchor.AddDate(0, 0, -rule.LeadDays).Format(isoDate),
			Done:        false,
		})
	}
	return items
}

// WithClock returns a copy of the engine using the supplied clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{table: e.table, now: now}
}
