package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier used for admin account
// keys and audit records.
func New() string {
	return ulid.Make().String()
}
