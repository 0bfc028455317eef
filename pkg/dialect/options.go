// Package dialect holds the options shared by the per-dialect parsers in its
// subpackages. Each dialect parser is self-contained: it extracts a
// vendor-shaped intermediate record, then translates it to model.RouteTable.
package dialect

import (
	"fmt"
	"time"
)

// Policy decides what happens when a single route entry fails to parse.
type Policy int

const (
	// FailFast aborts the whole parse on the first bad entry. Default.
	FailFast Policy = iota
	// SkipInvalid drops the bad entry, reports it through Options.OnSkip
	// and keeps parsing.
	SkipInvalid
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipInvalid:
		return "skip-invalid"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "fail-fast" or "skip-invalid".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fail-fast":
		return FailFast, nil
	case "skip-invalid":
		return SkipInvalid, nil
	default:
		return FailFast, fmt.Errorf("unknown entry error policy %q", s)
	}
}

// Options configures a dialect parser. The zero value is FailFast with the
// wall clock.
type Options struct {
	Policy Policy
	// OnSkip is called once per dropped entry under SkipInvalid. index is the
	// entry's zero-based position in device order, counting the unit each
	// dialect drops: a Huawei route block, a Junos rt-entry, an EOS prefix
	// entry (with all its paths).
	OnSkip func(index int, err error)
	// Now is the clock used for timestamp-to-age conversion.
	Now func() time.Time
}

// Clock returns o.Now, or time.Now when unset.
func (o Options) Clock() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// HandleEntryError applies the policy to a failed entry. It returns err
// (wrapped with the entry index) when parsing must stop, or nil after
// reporting the skip.
func (o Options) HandleEntryError(index int, err error) error {
	if o.Policy != SkipInvalid {
		return fmt.Errorf("entry %d: %w", index, err)
	}
	if o.OnSkip != nil {
		o.OnSkip(index, err)
	}
	return nil
}
