package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func strPtr(value string) *string {
	return &value
}

func TestApplySpecOverridesColors(t *testing.T) {
	base := DefaultTheme()
	alpha := 0.5
	spec := Spec{
		Grid:      strPtr("#123456"),
		Series:    []string{"#111111", " #eee "},
		FillAlpha: &alpha,
	}

	updated, err := ApplySpec(base, spec)
	if err != nil {
		t.Fatalf("ApplySpec returned error: %v", err)
	}
	if updated.Grid != "#123456" {
		t.Errorf("expected grid override, got %q", updated.Grid)
	}
	if updated.Text != base.Text {
		t.Errorf("expected text to keep base value, got %q", updated.Text)
	}
	if len(updated.Series) != 2 || updated.Series[1] != lipgloss.Color("#eee") {
		t.Fatalf("expected series palette override, got %v", updated.Series)
	}
	if updated.FillAlpha != 0.5 {
		t.Errorf("expected fill alpha 0.5, got %v", updated.FillAlpha)
	}
	if base.Grid == "#123456" || len(base.Series) == 2 {
		t.Errorf("base theme should remain unchanged")
	}
}

func TestApplySpecRejectsInvalid(t *testing.T) {
	base := DefaultTheme()
	if _, err := ApplySpec(base, Spec{Text: strPtr("purple")}); err == nil {
		t.Fatalf("expected error for non-hex color")
	}
	if _, err := ApplySpec(base, Spec{Series: []string{"#fff", "#12"}}); err == nil {
		t.Fatalf("expected error for short series color")
	}
	bad := 1.5
	if _, err := ApplySpec(base, Spec{FillAlpha: &bad}); err == nil {
		t.Fatalf("expected error for fill alpha above 1")
	}
}

func TestSeriesColorCycles(t *testing.T) {
	th := DefaultTheme()
	n := len(th.Series)
	if th.SeriesColor(n) != th.SeriesColor(0) {
		t.Fatalf("expected palette to wrap")
	}
	th.Series = nil
	if th.SeriesColor(3) == "" {
		t.Fatalf("expected a fallback color for empty palette")
	}
}
