package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/leadgen/internal/config"
)

func TestNewBuilderFromConfig(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.ReportConfig
		wantLayout   func() Layout
		wantBranding Branding
		wantFormat   string
		wantLocation string
		wantErr      bool
	}{
		{
			name:         "zero values keep the defaults",
			cfg:          config.ReportConfig{},
			wantLayout:   DefaultLayout,
			wantBranding: DefaultBranding(),
			wantFormat:   DefaultTimestampFormat,
			wantLocation: time.Local.String(),
		},
		{
			name: "overrides",
			cfg: config.ReportConfig{
				PageSize:                "Letter",
				Margin:                  36,
				LineBreakThreshold:      80,
				CitationsBreakThreshold: 150,
				LookAheadLines:          30,
				LeadCardHeight:          40,
				LeadCardGap:             10,
				LeadBlockPadding:        6,
				BulletRowHeight:         18,
				BulletIndent:            12,
				BodyLineHeight:          15,
				ParagraphGap:            2,
				BlankGap:                3,
				HeaderGap:               9,
				Title:                   "Acme Leads",
				Footer:                  "Acme internal",
				TimestampFormat:         time.RFC3339,
				Timezone:                "UTC",
			},
			wantLayout: func() Layout {
				l := DefaultLayout()
				l.PageSize = "Letter"
				l.Margin = 36
				l.LineBreakThreshold = 80
				l.CitationsBreakThreshold = 150
				l.LookAheadLines = 30
				l.LeadCardHeight = 40
				l.LeadCardGap = 10
				l.LeadBlockPadding = 6
				l.BulletRowHeight = 18
				l.BulletIndent = 12
				l.BodyLineHeight = 15
				l.ParagraphGap = 2
				l.BlankGap = 3
				l.HeaderGap = 9
				return l
			},
			wantBranding: Branding{
				Title:    "Acme Leads",
				Subtitle: DefaultBranding().Subtitle,
				Footer:   "Acme internal",
			},
			wantFormat:   time.RFC3339,
			wantLocation: "UTC",
		},
		{
			name:    "unknown timezone",
			cfg:     config.ReportConfig{Timezone: "Nowhere/City"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewBuilderFromConfig(tt.cfg, WithCompression(false))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLayout(), got.layout)
			assert.Equal(t, tt.wantBranding, got.branding)
			assert.Equal(t, tt.wantFormat, got.timestampFormat)
			assert.Equal(t, tt.wantLocation, got.location.String())
			assert.False(t, got.compress)
		})
	}
}
