// Package report turns a model's Markdown answer into a paginated PDF lead
// report: a fixed header, the search criteria, the rendered leads and the
// cited sources.
package report

import (
	"errors"
	"strings"
)

// ErrRendering is returned when the drawing backend fails. No partial
// document is returned with it.
var ErrRendering = errors.New("rendering failure")

// SearchCriteria are the search inputs echoed in the report's criteria box.
type SearchCriteria struct {
	Description    string   `json:"description" yaml:"description"`
	Locations      []string `json:"locations" yaml:"locations"`
	Industries     []string `json:"industries" yaml:"industries"`
	CompanySizeMin *int     `json:"companySizeMin,omitempty" yaml:"company_size_min,omitempty"`
	CompanySizeMax *int     `json:"companySizeMax,omitempty" yaml:"company_size_max,omitempty"`
	Personas       []string `json:"personas" yaml:"personas"`
}

// Citation is a source the model cited. URL and CitedText are optional.
type Citation struct {
	Title     string `json:"title" yaml:"title"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	CitedText string `json:"citedText,omitempty" yaml:"cited_text,omitempty"`
}

// nonEmpty drops blank entries and trims the rest.
func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
