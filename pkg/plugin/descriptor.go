package plugin

// Descriptor is a plugin's static declaration of what it handles.
type Descriptor struct {
	Name string
	// Platforms the plugin runs for; empty means every platform.
	Platforms []string
	// Directives the plugin runs for; empty means every directive.
	Directives []string
	// RequireStructured limits the plugin to devices with structured
	// output enabled.
	RequireStructured bool
	// Accepts is the only output kind the plugin consumes.
	Accepts Kind
}

// Applies is the applicability test: output kind, platform, structured
// output flag and directive must all match.
func (d Descriptor) Applies(out Output, q Query) bool {
	if KindOf(out) != d.Accepts {
		return false
	}
	if len(d.Platforms) > 0 && !contains(d.Platforms, q.Platform()) {
		return false
	}
	if d.RequireStructured && !q.StructuredOutput() {
		return false
	}
	if len(d.Directives) > 0 && !q.HasDirectives(d.Directives...) {
		return false
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
