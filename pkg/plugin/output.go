// Package plugin routes device output through an ordered set of output
// plugins. Each plugin declares which platform, directive and output kind it
// handles; the pipeline hands it only output it can consume and passes
// everything else through unchanged.
package plugin

import (
	"fmt"

	"github.com/routeglass/routeglass/pkg/model"
)

// Output is the value flowing through the pipeline. It holds exactly one of
// Raw, *model.RouteTable, Intermediate or Empty; KindOf tells them apart.
// Any other value is KindUnknown and is never consumed by a plugin.
type Output interface{}

// Kind tags an Output variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindRaw
	KindRouteTable
	KindIntermediate
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindRouteTable:
		return "route_table"
	case KindIntermediate:
		return "intermediate"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Raw is the untouched (stdout, stderr) pair returned by the device layer.
type Raw struct {
	Stdout string
	Stderr string
}

// Intermediate carries a vendor-shaped record between plugins, tagged with
// the platform that produced it.
type Intermediate struct {
	Platform string
	Record   interface{}
}

// Empty marks output that produced no result. Reason is a short
// human-readable cause; the full error lives in the diagnostic event.
type Empty struct {
	Platform string
	Reason   string
}

func (e Empty) String() string {
	if e.Reason == "" {
		return fmt.Sprintf("empty(%s)", e.Platform)
	}
	return fmt.Sprintf("empty(%s): %s", e.Platform, e.Reason)
}

// KindOf classifies out. A nil *model.RouteTable is KindUnknown.
func KindOf(out Output) Kind {
	switch v := out.(type) {
	case Raw:
		return KindRaw
	case *model.RouteTable:
		if v == nil {
			return KindUnknown
		}
		return KindRouteTable
	case Intermediate:
		return KindIntermediate
	case Empty:
		return KindEmpty
	default:
		return KindUnknown
	}
}
