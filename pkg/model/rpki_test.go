package model

import (
	"encoding/json"
	"testing"
)

func TestRPKIStateValues(t *testing.T) {
	want := map[RPKIState]int{
		RPKIInvalid:      0,
		RPKIValid:        1,
		RPKINotFound:     2,
		RPKINotValidated: 3,
		RPKIUnknown:      4,
	}
	for st, n := range want {
		if int(st) != n {
			t.Errorf("%s = %d, want %d", st, int(st), n)
		}
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if RPKIState(5).Valid() || RPKIState(-1).Valid() {
		t.Error("out of range states should not be valid")
	}
}

func TestRPKIStateFromString(t *testing.T) {
	tests := []struct {
		in   string
		want RPKIState
	}{
		{"valid", RPKIValid},
		{"Valid", RPKIValid},
		{"invalid", RPKIInvalid},
		{"notFound", RPKINotFound},
		{"not-found", RPKINotFound},
		{"notValidated", RPKINotValidated},
		{" not_validated ", RPKINotValidated},
		{"", RPKIUnknown},
		{"garbage", RPKIUnknown},
	}
	for _, tt := range tests {
		if got := RPKIStateFromString(tt.in); got != tt.want {
			t.Errorf("RPKIStateFromString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRPKIStateString(t *testing.T) {
	if RPKIUnknown.String() != "unknown" {
		t.Errorf("String() = %q", RPKIUnknown.String())
	}
	if RPKIState(7).String() != "RPKIState(7)" {
		t.Errorf("String() = %q", RPKIState(7).String())
	}
}

func TestRPKIStateMarshalJSON(t *testing.T) {
	data, err := json.Marshal(RPKIUnknown)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "4" {
		t.Errorf("Marshal(Unknown) = %s, want 4", data)
	}
	if _, err := json.Marshal(RPKIState(42)); err == nil {
		t.Error("expected error marshalling out-of-range state")
	}
}
