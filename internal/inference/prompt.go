package inference

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
)

// promptData is the value the prompt template is executed with.
type promptData struct {
	Query          LeadQuery
	EnabledFields  []string
	RequiredFields []string
	Accurate       bool
	MaxResults     int
	SizeMin        string
	SizeMax        string
}

// BuildPrompt renders the lead generation prompt for query. Defaults are
// applied first, so an empty search mode means accurate.
func BuildPrompt(tmpl *template.Template, query LeadQuery) (string, error) {
	query = query.WithDefaults()
	data := promptData{
		Query:          query,
		EnabledFields:  query.EnabledFields(),
		RequiredFields: query.RequiredFields(),
		Accurate:       query.SearchMode != SearchModeLoose,
		MaxResults:     query.MaxResults,
		SizeMin:        sizeOrAny(query.CompanySizeMin),
		SizeMax:        sizeOrAny(query.CompanySizeMax),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return buf.String(), nil
}

func sizeOrAny(n FlexInt) string {
	if p := n.Ptr(); p != nil {
		return strconv.Itoa(*p)
	}
	return "Any"
}
