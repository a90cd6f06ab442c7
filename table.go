// table.go - frozen perfect hash tables
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
	"fmt"
	"io"
)

// Entry is a single key/value pair of a listing. Values are opaque and
// passed through to renderers unmodified.
type Entry struct {
	Key   string
	Value string
}

// Table is the result of a successful capacity search: a sparse array of
// Cap() slots where every key sits at the bucket its oracle computes for
// that capacity. A Table is immutable and safe for concurrent readers.
type Table struct {
	slots  []*Entry
	ents   []Entry
	occ    *bitVector
	oracle Oracle

	// search statistics
	trials uint64
	probes uint64
}

// Cap returns the table capacity (number of slots)
func (t *Table) Cap() uint64 {
	return uint64(len(t.slots))
}

// Len returns the number of occupied slots
func (t *Table) Len() int {
	return len(t.ents)
}

// Oracle returns the hash oracle the table was built with
func (t *Table) Oracle() Oracle {
	return t.oracle
}

// Trials returns the number of capacities tried, including the final one.
func (t *Table) Trials() uint64 {
	return t.trials
}

// Probes returns the number of oracle evaluations the search made.
func (t *Table) Probes() uint64 {
	return t.probes
}

// Slot returns the entry at bucket 'i'; the bool is false for empty
// slots and for buckets beyond the capacity.
func (t *Table) Slot(i uint64) (Entry, bool) {
	if i >= uint64(len(t.slots)) || t.slots[i] == nil {
		return Entry{}, false
	}
	return *t.slots[i], true
}

// Entries returns the entries in their original order.
func (t *Table) Entries() []Entry {
	v := make([]Entry, len(t.ents))
	copy(v, t.ents)
	return v
}

// Find returns the bucket holding 'key'. It returns false if the key was
// not in the listing the table was built from.
func (t *Table) Find(key string) (uint64, bool) {
	i := t.oracle.Hash(key, t.Cap())
	if i >= t.Cap() {
		return 0, false
	}

	e := t.slots[i]
	if e == nil || e.Key != key {
		return 0, false
	}
	return i, true
}

// Lookup returns the value stored against 'key'
func (t *Table) Lookup(key string) (string, bool) {
	i, ok := t.Find(key)
	if !ok {
		return "", false
	}
	return t.slots[i].Value, true
}

// IterFunc calls 'fp' for every occupied slot in bucket order. A non-nil
// error from 'fp' stops the iteration and is returned to the caller.
func (t *Table) IterFunc(fp func(bucket uint64, e Entry) error) error {
	for i, e := range t.slots {
		if e == nil {
			continue
		}
		if err := fp(uint64(i), *e); err != nil {
			return err
		}
	}
	return nil
}

// DumpMeta dumps the table metadata and slot assignment to 'w'
func (t *Table) DumpMeta(w io.Writer) {
	c := t.Cap()
	load := 100.0 * float64(len(t.ents)) / float64(c)

	fmt.Fprintf(w, "  %s <seed %#x>: %d keys in %d slots (%3.1f%% load); %d trials, %d probes\n",
		t.oracle.Name(), oracleSeed(t.oracle), len(t.ents), c, load, t.trials, t.probes)

	for i, e := range t.slots {
		if e == nil {
			fmt.Fprintf(w, "  %3d: -\n", i)
			continue
		}
		fmt.Fprintf(w, "  %3d: %q = %q\n", i, e.Key, e.Value)
	}
}
