// errors.go - public errors exposed by perfhash
//
// (c) Sudhi Herle 2018
//
// License GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package perfhash

import (
	"errors"
	"fmt"
)

func errShortWrite(who string, exp, n int) error {
	return fmt.Errorf("%s: incomplete write; exp %d, saw %d", who, exp, n)
}

var (
	// ErrBoundExceeded is returned when the capacity search grows past the
	// caller supplied ceiling without finding a collision free table.
	ErrBoundExceeded = errors.New("capacity ceiling exceeded")

	// ErrBadBucket is returned when a hash oracle returns a bucket outside
	// [0, capacity).
	ErrBadBucket = errors.New("oracle bucket out of range")

	// ErrFrozen is returned when attempting to add new entries to an already
	// frozen builder. It is also returned when trying to freeze twice.
	ErrFrozen = errors.New("table already frozen")

	// ErrExists is returned if a duplicate key is added to a listing
	ErrExists = errors.New("duplicate key")

	// ErrEmptyKey is returned if an entry has a zero length key
	ErrEmptyKey = errors.New("empty key")

	// ErrMalformed is returned for listing lines that aren't exactly KEY=VALUE
	ErrMalformed = errors.New("malformed entry")

	// ErrNoKey is returned when a key cannot be found in a table
	ErrNoKey = errors.New("No such key")

	// ErrUnknownOracle is returned when a hash oracle name is not registered
	ErrUnknownOracle = errors.New("unknown hash oracle")

	// ErrUnknownFormat is returned when asked to render an unsupported format
	ErrUnknownFormat = errors.New("unknown output format")

	// Header too small for unmarshalling
	ErrTooSmall = errors.New("not enough data to unmarshal")
)
