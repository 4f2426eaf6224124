package inference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/leadgen/internal/report"
)

func intPtr(v int) *int { return &v }

func TestFlexInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexInt
		wantErr bool
	}{
		{name: "number", input: `50`, want: 50},
		{name: "numeric string", input: `"250"`, want: 250},
		{name: "padded string", input: `" 10 "`, want: 10},
		{name: "empty string", input: `""`, want: 0},
		{name: "null", input: `null`, want: 0},
		{name: "not a number", input: `"many"`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexInt
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeadQuery_UnmarshalFormData(t *testing.T) {
	body := `{
		"companyDescription": "HR software",
		"locations": ["Berlin"],
		"industry": ["Manufacturing"],
		"companySizeMin": "50",
		"companySizeMax": "",
		"personas": ["HR Manager"],
		"additionalCriteria": "",
		"outputFields": [{"id": "1", "label": "Company Name", "enabled": true, "required": true}],
		"searchMode": "loose",
		"maxResults": 5
	}`

	var got LeadQuery
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, LeadQuery{
		CompanyDescription: "HR software",
		Locations:          []string{"Berlin"},
		Industry:           []string{"Manufacturing"},
		CompanySizeMin:     50,
		Personas:           []string{"HR Manager"},
		OutputFields:       []OutputField{{ID: "1", Label: "Company Name", Enabled: true, Required: true}},
		SearchMode:         SearchModeLoose,
		MaxResults:         5,
	}, got)
}

func TestLeadQuery_UnmarshalYAML(t *testing.T) {
	body := `company_description: HR software
locations: [Berlin]
industry: [Manufacturing]
company_size_min: 10
company_size_max: "500"
`
	var got LeadQuery
	require.NoError(t, yaml.Unmarshal([]byte(body), &got))
	assert.Equal(t, FlexInt(10), got.CompanySizeMin)
	assert.Equal(t, FlexInt(500), got.CompanySizeMax)
}

func TestLeadQuery_WithDefaults(t *testing.T) {
	tests := []struct {
		name  string
		query LeadQuery
		want  LeadQuery
	}{
		{
			name:  "empty query",
			query: LeadQuery{},
			want: LeadQuery{
				SearchMode:   SearchModeAccurate,
				MaxResults:   DefaultMaxResults,
				OutputFields: DefaultOutputFields(),
			},
		},
		{
			name: "explicit values are kept",
			query: LeadQuery{
				SearchMode:   SearchModeLoose,
				MaxResults:   3,
				OutputFields: []OutputField{{Label: "Website", Enabled: true}},
			},
			want: LeadQuery{
				SearchMode:   SearchModeLoose,
				MaxResults:   3,
				OutputFields: []OutputField{{Label: "Website", Enabled: true}},
			},
		},
		{
			name:  "result limit is capped",
			query: LeadQuery{MaxResults: 500},
			want: LeadQuery{
				SearchMode:   SearchModeAccurate,
				MaxResults:   MaxMaxResults,
				OutputFields: DefaultOutputFields(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.WithDefaults())
		})
	}
}

func TestLeadQuery_Fields(t *testing.T) {
	q := LeadQuery{OutputFields: []OutputField{
		{Label: "Company Name", Enabled: true, Required: true},
		{Label: "Phone", Enabled: true},
		{Label: "Fax", Enabled: false, Required: true},
	}}
	assert.Equal(t, []string{"Company Name", "Phone"}, q.EnabledFields())
	assert.Equal(t, []string{"Company Name"}, q.RequiredFields())

	defaults := LeadQuery{OutputFields: DefaultOutputFields()}
	assert.Len(t, defaults.EnabledFields(), 7)
	assert.Equal(t, []string{"Company Name", "Contact Person (First & Last Name)"}, defaults.RequiredFields())
}

func TestLeadQuery_Criteria(t *testing.T) {
	q := LeadQuery{
		CompanyDescription: "HR software",
		Locations:          []string{"Berlin"},
		Industry:           []string{"IT"},
		CompanySizeMax:     200,
		Personas:           []string{"CTO"},
	}
	assert.Equal(t, report.SearchCriteria{
		Description:    "HR software",
		Locations:      []string{"Berlin"},
		Industries:     []string{"IT"},
		CompanySizeMax: intPtr(200),
		Personas:       []string{"CTO"},
	}, q.Criteria())
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Provider
		wantErr error
	}{
		{name: "empty uses fallback", input: "", want: ProviderGemini},
		{name: "claude", input: "claude", want: ProviderClaude},
		{name: "case insensitive", input: " Gemini ", want: ProviderGemini},
		{name: "unknown", input: "openai", wantErr: ErrUnsupportedProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProvider(tt.input, ProviderGemini)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
