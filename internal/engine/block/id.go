package block

import "github.com/google/uuid"

// ID uniquely identifies a block node. IDs are immutable for the lifetime of
// a node; converting a node to another type allocates a fresh ID.
type ID string

// None is the zero ID, used where no block is referenced.
const None ID = ""

// IsNone returns true if the ID is the zero value.
func (id ID) IsNone() bool {
	return id == None
}

// String returns the ID as a string.
func (id ID) String() string {
	return string(id)
}

// IDGenerator supplies fresh globally-unique ids for created nodes.
type IDGenerator func() ID

// UUIDGenerator returns an IDGenerator backed by random UUIDs.
func UUIDGenerator() IDGenerator {
	return func() ID {
		return ID(uuid.NewString())
	}
}
