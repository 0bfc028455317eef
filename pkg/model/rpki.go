package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RPKIState is the origin validation state of a route.
type RPKIState int

const (
	RPKIInvalid      RPKIState = 0
	RPKIValid        RPKIState = 1
	RPKINotFound     RPKIState = 2
	RPKINotValidated RPKIState = 3
	RPKIUnknown      RPKIState = 4
)

var rpkiNames = map[RPKIState]string{
	RPKIInvalid:      "invalid",
	RPKIValid:        "valid",
	RPKINotFound:     "not_found",
	RPKINotValidated: "not_validated",
	RPKIUnknown:      "unknown",
}

// rpkiWords maps lowercased vendor validity words to a state. Anything not
// listed is RPKIUnknown.
var rpkiWords = map[string]RPKIState{
	"invalid":       RPKIInvalid,
	"valid":         RPKIValid,
	"notfound":      RPKINotFound,
	"not-found":     RPKINotFound,
	"not_found":     RPKINotFound,
	"notvalidated":  RPKINotValidated,
	"not-validated": RPKINotValidated,
	"not_validated": RPKINotValidated,
}

// RPKIStateFromString maps a vendor validity word to a state. Unrecognized or
// empty words map to RPKIUnknown.
func RPKIStateFromString(s string) RPKIState {
	if st, ok := rpkiWords[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	return RPKIUnknown
}

// Valid reports whether s is one of the five defined states.
func (s RPKIState) Valid() bool {
	_, ok := rpkiNames[s]
	return ok
}

func (s RPKIState) String() string {
	if name, ok := rpkiNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RPKIState(%d)", int(s))
}

// MarshalJSON keeps the numeric encoding consumers expect.
func (s RPKIState) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("rpki state %d out of range", int(s))
	}
	return json.Marshal(int(s))
}
