package report

import (
	"fmt"

	"github.com/at-ishikawa/leadgen/internal/config"
)

// OptionsFromConfig maps the report section of the configuration onto
// builder options. Zero values keep the defaults.
func OptionsFromConfig(cfg config.ReportConfig) ([]Option, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("cfg.Location() > %w", err)
	}

	layout := DefaultLayout()
	if cfg.PageSize != "" {
		layout.PageSize = cfg.PageSize
	}
	for _, o := range []struct {
		dst *float64
		val float64
	}{
		{&layout.Margin, cfg.Margin},
		{&layout.LineBreakThreshold, cfg.LineBreakThreshold},
		{&layout.CitationsBreakThreshold, cfg.CitationsBreakThreshold},
		{&layout.LeadCardHeight, cfg.LeadCardHeight},
		{&layout.LeadCardGap, cfg.LeadCardGap},
		{&layout.LeadBlockPadding, cfg.LeadBlockPadding},
		{&layout.BulletRowHeight, cfg.BulletRowHeight},
		{&layout.BulletIndent, cfg.BulletIndent},
		{&layout.BodyLineHeight, cfg.BodyLineHeight},
		{&layout.ParagraphGap, cfg.ParagraphGap},
		{&layout.BlankGap, cfg.BlankGap},
		{&layout.HeaderGap, cfg.HeaderGap},
	} {
		if o.val > 0 {
			*o.dst = o.val
		}
	}
	if cfg.LookAheadLines > 0 {
		layout.LookAheadLines = cfg.LookAheadLines
	}

	branding := DefaultBranding()
	if cfg.Title != "" {
		branding.Title = cfg.Title
	}
	if cfg.Subtitle != "" {
		branding.Subtitle = cfg.Subtitle
	}
	if cfg.Footer != "" {
		branding.Footer = cfg.Footer
	}

	opts := []Option{
		WithLayout(layout),
		WithBranding(branding),
		WithLocation(loc),
	}
	if cfg.TimestampFormat != "" {
		opts = append(opts, WithTimestampFormat(cfg.TimestampFormat))
	}
	return opts, nil
}

// NewBuilderFromConfig returns a Builder configured from the report section.
// Extra options are applied last.
func NewBuilderFromConfig(cfg config.ReportConfig, extra ...Option) (*Builder, error) {
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewBuilder(append(opts, extra...)...), nil
}
