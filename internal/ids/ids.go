// Package ids generates record identifiers.
package ids

import "github.com/google/uuid"

// Kind selects the prefix of a generated identifier.
type Kind string

const (
	Project  Kind = "proj"
	Employee Kind = "emp"
	Entry    Kind = "entry"
)

// New returns a fresh identifier such as "entry_9b2f...". The prefix keeps IDs
// readable in backups and exports; uniqueness comes from a random UUID.
func New(kind Kind) string {
	return string(kind) + "_" + uuid.NewString()
}
