// Package config carries the compiler's user-facing knobs, in the
// teacher's table-of-structs style: a Feature/Warning enum, an Info
// record per entry, and a name->enum reverse map built once.
package config

// Feature is an opt-in code generation completion. Both default off,
// matching spec.md's declared default contract (struct field access
// and repeat statements compile but emit nothing observable).
type Feature int

const (
	FeatStructs Feature = iota
	FeatRepeat
	featCount
)

// Warning is an opt-in diagnostic beyond what the static semantics
// require.
type Warning int

const (
	WarnShadow Warning = iota
	warnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

// Config is threaded through name analysis and code generation so
// both can consult the same feature/warning state.
type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	WordSize   int
}

func New() *Config {
	c := &Config{
		Features:   make(map[Feature]Info, featCount),
		Warnings:   make(map[Warning]Info, warnCount),
		FeatureMap: make(map[string]Feature, featCount),
		WarningMap: make(map[string]Warning, warnCount),
		WordSize:   4,
	}

	features := map[Feature]Info{
		FeatStructs: {"structs", false, "Complete struct field load/store codegen instead of emitting nothing for dot-access."},
		FeatRepeat:  {"repeat", false, "Complete repeat-statement codegen instead of leaving it type-checked only."},
	}
	warnings := map[Warning]Info{
		WarnShadow: {"shadow", false, "Warn when a formal or local declaration shadows a global of the same name."},
	}

	c.Features, c.Warnings = features, warnings
	for ft, info := range features {
		c.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		c.WarningMap[info.Name] = wt
	}
	return c
}

func (c *Config) SetFeature(f Feature, enabled bool) {
	if info, ok := c.Features[f]; ok {
		info.Enabled = enabled
		c.Features[f] = info
	}
}

func (c *Config) SetWarning(w Warning, enabled bool) {
	if info, ok := c.Warnings[w]; ok {
		info.Enabled = enabled
		c.Warnings[w] = info
	}
}

func (c *Config) SetAllWarnings(enabled bool) {
	for w, info := range c.Warnings {
		info.Enabled = enabled
		c.Warnings[w] = info
	}
}

func (c *Config) FeatureEnabled(f Feature) bool { return c.Features[f].Enabled }
func (c *Config) WarningEnabled(w Warning) bool { return c.Warnings[w].Enabled }
