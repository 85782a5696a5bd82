package id

import "github.com/oklog/ulid/v2"

// New returns a fresh ULID string. ULIDs sort lexicographically by creation
// time, so id-keyed DynamoDB items come back in insert order without a
// separate sort attribute.
func New() string {
	return ulid.Make().String()
}
