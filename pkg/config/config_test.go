package config

import "testing"

func TestNewDefaultsAllOff(t *testing.T) {
	c := New()
	if c.FeatureEnabled(FeatStructs) {
		t.Error("FeatStructs should default off")
	}
	if c.FeatureEnabled(FeatRepeat) {
		t.Error("FeatRepeat should default off")
	}
	if c.WarningEnabled(WarnShadow) {
		t.Error("WarnShadow should default off")
	}
}

func TestSetFeatureRoundTrip(t *testing.T) {
	c := New()
	c.SetFeature(FeatStructs, true)
	if !c.FeatureEnabled(FeatStructs) {
		t.Error("FeatStructs should be enabled after SetFeature(true)")
	}
	c.SetFeature(FeatStructs, false)
	if c.FeatureEnabled(FeatStructs) {
		t.Error("FeatStructs should be disabled after SetFeature(false)")
	}
}

func TestReverseMapsCoverEveryEntry(t *testing.T) {
	c := New()
	for name, ft := range c.FeatureMap {
		if c.Features[ft].Name != name {
			t.Errorf("FeatureMap[%q] = %v, but Features[%v].Name = %q", name, ft, ft, c.Features[ft].Name)
		}
	}
	for name, wt := range c.WarningMap {
		if c.Warnings[wt].Name != name {
			t.Errorf("WarningMap[%q] = %v, but Warnings[%v].Name = %q", name, wt, wt, c.Warnings[wt].Name)
		}
	}
}

func TestSetAllWarnings(t *testing.T) {
	c := New()
	c.SetAllWarnings(true)
	if !c.WarningEnabled(WarnShadow) {
		t.Error("SetAllWarnings(true) should enable WarnShadow")
	}
}
