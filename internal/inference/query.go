package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/at-ishikawa/leadgen/internal/report"
)

// SearchMode controls how strictly required fields are enforced
type SearchMode string

const (
	SearchModeAccurate SearchMode = "accurate"
	SearchModeLoose    SearchMode = "loose"
)

const (
	DefaultMaxResults = 10
	MaxMaxResults     = 50
)

// OutputField is one column a lead should carry
type OutputField struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Label    string `json:"label" yaml:"label" validate:"required"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Required bool   `json:"required" yaml:"required"`
}

// LeadQuery is what a user asks for
type LeadQuery struct {
	CompanyDescription string        `json:"companyDescription" yaml:"company_description" validate:"required"`
	Locations          []string      `json:"locations" yaml:"locations" validate:"min=1,dive,required"`
	Industry           []string      `json:"industry" yaml:"industry" validate:"min=1,dive,required"`
	CompanySizeMin     FlexInt       `json:"companySizeMin,omitempty" yaml:"company_size_min,omitempty"`
	CompanySizeMax     FlexInt       `json:"companySizeMax,omitempty" yaml:"company_size_max,omitempty"`
	Personas           []string      `json:"personas" yaml:"personas"`
	AdditionalCriteria string        `json:"additionalCriteria,omitempty" yaml:"additional_criteria,omitempty"`
	OutputFields       []OutputField `json:"outputFields,omitempty" yaml:"output_fields,omitempty" validate:"dive"`
	SearchMode         SearchMode    `json:"searchMode,omitempty" yaml:"search_mode,omitempty" validate:"omitempty,oneof=accurate loose"`
	MaxResults         int           `json:"maxResults,omitempty" yaml:"max_results,omitempty" validate:"gte=0,lte=50"`
}

// WithDefaults fills the search mode, result limit and output fields the
// query left empty.
func (q LeadQuery) WithDefaults() LeadQuery {
	if q.SearchMode == "" {
		q.SearchMode = SearchModeAccurate
	}
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.MaxResults > MaxMaxResults {
		q.MaxResults = MaxMaxResults
	}
	if len(q.OutputFields) == 0 {
		q.OutputFields = DefaultOutputFields()
	}
	return q
}

// EnabledFields returns the labels of enabled fields in order
func (q LeadQuery) EnabledFields() []string {
	var labels []string
	for _, f := range q.OutputFields {
		if f.Enabled {
			labels = append(labels, f.Label)
		}
	}
	return labels
}

// RequiredFields returns the labels of fields both enabled and required
func (q LeadQuery) RequiredFields() []string {
	var labels []string
	for _, f := range q.OutputFields {
		if f.Enabled && f.Required {
			labels = append(labels, f.Label)
		}
	}
	return labels
}

// Criteria returns the part of the query echoed in the report.
func (q LeadQuery) Criteria() report.SearchCriteria {
	return report.SearchCriteria{
		Description:    q.CompanyDescription,
		Locations:      q.Locations,
		Industries:     q.Industry,
		CompanySizeMin: q.CompanySizeMin.Ptr(),
		CompanySizeMax: q.CompanySizeMax.Ptr(),
		Personas:       q.Personas,
	}
}

// DefaultOutputFields are the seven fields a lead carries unless the user
// picks others.
func DefaultOutputFields() []OutputField {
	return []OutputField{
		{ID: "company_name", Label: "Company Name", Enabled: true, Required: true},
		{ID: "contact_person", Label: "Contact Person (First & Last Name)", Enabled: true, Required: true},
		{ID: "position", Label: "Position (e.g., HR Manager, Marketing Director)", Enabled: true},
		{ID: "phone", Label: "Phone Number (with extension if available)", Enabled: true},
		{ID: "email", Label: "Personal Email Address or info@example.com", Enabled: true},
		{ID: "location", Label: "Location", Enabled: true},
		{ID: "website", Label: "Website", Enabled: true},
	}
}

// FlexInt is an optional integer that also accepts a numeric string, since
// form inputs send company sizes as text. Zero means unset.
type FlexInt int

// Ptr returns nil for an unset value.
func (n FlexInt) Ptr() *int {
	if n <= 0 {
		return nil
	}
	v := int(n)
	return &v
}

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("json.Unmarshal() > %w", err)
		}
		return n.parse(s)
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("json.Unmarshal() > %w", err)
	}
	*n = FlexInt(v)
	return nil
}

func (n *FlexInt) UnmarshalText(text []byte) error {
	return n.parse(string(text))
}

func (n *FlexInt) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid company size %q: %w", s, err)
	}
	*n = FlexInt(v)
	return nil
}
