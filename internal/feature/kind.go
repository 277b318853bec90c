// Package feature provides the interactive map features: signs, dialogs,
// stores, temples, portals, fixed encounters and blocks.
package feature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by ParseKind for unregistered type names.
var ErrUnknownKind = errors.New("feature: unknown kind")

// Kind is the closed set of feature types.
type Kind int

const (
	KindUnknown Kind = iota
	KindSign
	KindDialog
	KindStore
	KindTemple
	KindPortal
	KindEncounter
	KindBlock
)

var kindNames = map[Kind]string{
	KindSign:      "sign",
	KindDialog:    "dialog",
	KindStore:     "store",
	KindTemple:    "temple",
	KindPortal:    "portal",
	KindEncounter: "encounter",
	KindBlock:     "block",
}

// String returns the map type name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Walkable reports whether actors may step onto a feature of this kind.
// Kinds not listed here block, including KindUnknown.
func (k Kind) Walkable() bool {
	switch k {
	case KindSign, KindDialog, KindStore, KindTemple, KindPortal, KindEncounter:
		return true
	default:
		return false
	}
}

// ParseKind maps a map object type name to its Kind. Matching ignores case.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
