// Package securestore holds the single bearer credential at rest. The
// contract is deliberately small: one slot, replaced wholesale on every
// update, wiped on sign-out. An empty slot is a normal state, never an error.
//
// Token contents must never appear in logs or error text; implementations in
// this package return structural errors only.
package securestore

// Store is the durable credential slot.
type Store interface {
	// Put replaces whatever the slot holds with token (delete-then-write;
	// values are never merged).
	Put(token string) error

	// Get returns the stored token, or "" when the slot is empty. An empty
	// slot is not an error.
	Get() (string, error)

	// Delete empties the slot. Deleting an already-empty slot succeeds.
	Delete() error
}
