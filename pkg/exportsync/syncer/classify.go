package syncer

import (
	"github.com/tennoforge/exportsync/pkg/exportsync/ledger"
	"github.com/tennoforge/exportsync/pkg/exportsync/resource"
)

// Classification is the change-detection outcome for one descriptor.
type Classification int

const (
	// Unchanged means the ledger already records the observed hash.
	Unchanged Classification = iota

	// ClassNew means the ledger has no entry for the resource.
	ClassNew

	// Updated means the ledger records a different hash.
	Updated
)

// String returns the lower-case name of the classification.
func (c Classification) String() string {
	switch c {
	case ClassNew:
		return "new"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Classify compares a descriptor's observed hash against the ledger.
func Classify(led *ledger.Ledger, desc resource.Descriptor) Classification {
	recorded, ok := led.Get(desc.Name)
	if !ok {
		return ClassNew
	}
	if recorded != desc.Hash {
		return Updated
	}
	return Unchanged
}
