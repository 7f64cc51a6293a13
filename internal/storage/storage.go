// Package storage defines the local device storage contract used for the
// persisted cart and the checkout form draft.
//
// Stored values are opaque JSON blobs with no schema version field. Readers
// must treat any shape mismatch as "absent" rather than fatal.
package storage

// Store is a key/value blob store on the local device.
type Store interface {
	// Read returns the stored blob for key. ok is false when the key is
	// absent; absence is not an error.
	Read(key string) (data []byte, ok bool, err error)

	// Write stores the blob under key, replacing any previous value.
	Write(key string, data []byte) error

	// Delete removes the key. Deleting an absent key is a no-op.
	Delete(key string) error
}

// Well-known storage keys, kept identical to the browser client's
// localStorage keys so the two clients stay interchangeable.
const (
	KeyCart  = "cart_items"
	KeyDraft = "checkout_form_data"
)
