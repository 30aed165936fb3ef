package model

import "testing"

func TestGetProfileFallsBackToGeneric(t *testing.T) {
	p := GetProfile("does-not-exist")
	if p.Name != "Generic" {
		t.Fatalf("expected fallback to Generic, got %q", p.Name)
	}
}

func TestGetProfileFindsByName(t *testing.T) {
	p := GetProfile("Grbl")
	if p.Name != "Grbl" {
		t.Fatalf("expected Grbl, got %q", p.Name)
	}
	if p.RapidMove != "G0" || p.FeedMove != "G1" {
		t.Fatalf("unexpected motion codes: %+v", p)
	}
}

func TestGetProfileNamesIncludesBuiltins(t *testing.T) {
	names := GetProfileNames()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"Grbl", "LinuxCNC", "Generic"} {
		if !found[want] {
			t.Errorf("expected profile %q in %v", want, names)
		}
	}
}

func TestDefaultConfigIsSane(t *testing.T) {
	c := DefaultConfig()
	if c.Res <= 0 {
		t.Errorf("Res must be positive, got %v", c.Res)
	}
	if c.StockDiameter <= 0 || c.StockLength <= 0 {
		t.Errorf("stock geometry must be positive: %+v", c)
	}
	if c.ToolNaturalDiameter <= 0 || c.ToolNaturalLength <= 0 {
		t.Errorf("tool geometry must be positive: %+v", c)
	}
	if c.HasProtectedZ {
		t.Errorf("default config should have no protected z")
	}
}
