// doc.go - top level documentation
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

// Package perfhash builds minimal perfect hash tables for small, fixed sets
// of string keys known at build time (keywords, HTTP methods, header names
// and the like).
//
// Unlike CHD or BBHash, perfhash does not construct a hash function. The
// caller supplies one (an Oracle) and perfhash searches for the smallest
// table capacity C at which hash(key) % C places every key in a distinct
// bucket. The resulting sparse Table can then be rendered as C or Go
// source, or written to a checksummed binary file that is memory mapped
// for lookups.
//
// The search starts at capacity 1 and, on the first collision, grows the
// capacity by one and replays every key from the beginning. The outcome
// depends only on the key order and the oracle; the same input always
// produces the same table.
//
// The search itself does not detect duplicate keys: two identical keys
// collide at every capacity. Use a Builder (or CheckDuplicates) to reject
// them up front, and always pass a capacity ceiling when the oracle is not
// trusted.
package perfhash
