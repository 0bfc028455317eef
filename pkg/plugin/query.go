package plugin

// Device is the subset of a device definition the pipeline needs.
type Device interface {
	Name() string
	Platform() string
	StructuredOutput() bool
}

// Query is the request context that produced an output: which device was
// asked, which directive ran and the exact command text sent.
type Query struct {
	Device    Device
	Directive string
	Command   string
}

// Platform returns the device platform, or "" when no device is set.
func (q Query) Platform() string {
	if q.Device == nil {
		return ""
	}
	return q.Device.Platform()
}

// DeviceName returns the device name, or "" when no device is set.
func (q Query) DeviceName() string {
	if q.Device == nil {
		return ""
	}
	return q.Device.Name()
}

// StructuredOutput reports whether the device has structured output enabled.
func (q Query) StructuredOutput() bool {
	return q.Device != nil && q.Device.StructuredOutput()
}

// HasDirectives reports whether the invoked directive is one of ids.
func (q Query) HasDirectives(ids ...string) bool {
	for _, id := range ids {
		if q.Directive == id {
			return true
		}
	}
	return false
}

// StaticDevice is a fixed Device, used when output comes from a file rather
// than an inventory entry.
type StaticDevice struct {
	DeviceName     string
	DevicePlatform string
	Structured     bool
}

func (d StaticDevice) Name() string           { return d.DeviceName }
func (d StaticDevice) Platform() string       { return d.DevicePlatform }
func (d StaticDevice) StructuredOutput() bool { return d.Structured }
