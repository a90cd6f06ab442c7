// search_test.go -- test suite for the capacity search
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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSearchCollisionGrows(t *testing.T) {
	assert := newAsserter(t)

	o := stubOracle(map[string]map[uint64]uint64{
		"a": {2: 0},
		"b": {2: 1},
	})

	tab, err := Search([]Entry{{"a", "1"}, {"b", "2"}}, o, 0)
	assert(err == nil, "search: %s", err)
	assert(tab.Cap() == 2, "cap: exp 2, saw %d", tab.Cap())
	assert(tab.Trials() == 2, "trials: exp 2, saw %d", tab.Trials())

	// cap 1: a, b (collides); cap 2: a, b
	assert(tab.Probes() == 4, "probes: exp 4, saw %d", tab.Probes())

	e, ok := tab.Slot(0)
	assert(ok && e == Entry{"a", "1"}, "slot 0: saw %v %v", e, ok)
	e, ok = tab.Slot(1)
	assert(ok && e == Entry{"b", "2"}, "slot 1: saw %v %v", e, ok)
}

func TestSearchSingle(t *testing.T) {
	assert := newAsserter(t)

	o := OracleFunc(func(key string, c uint64) uint64 {
		return uint64(len(key)*7) % c
	})

	tab, err := Search([]Entry{{"x", "9"}}, o, 0)
	assert(err == nil, "search: %s", err)
	assert(tab.Cap() == 1, "cap: exp 1, saw %d", tab.Cap())

	e, ok := tab.Slot(0)
	assert(ok && e == Entry{"x", "9"}, "slot 0: saw %v %v", e, ok)
}

func TestSearchEmpty(t *testing.T) {
	assert := newAsserter(t)

	called := 0
	o := OracleFunc(func(string, uint64) uint64 {
		called++
		return 0
	})

	tab, err := Search(nil, o, 0)
	assert(err == nil, "search: %s", err)
	assert(tab.Cap() == 1, "cap: exp 1, saw %d", tab.Cap())
	assert(tab.Len() == 0, "len: exp 0, saw %d", tab.Len())
	assert(called == 0, "oracle called %d times", called)

	_, ok := tab.Slot(0)
	assert(!ok, "slot 0 occupied")
}

func TestSearchDuplicateHitsCeiling(t *testing.T) {
	assert := newAsserter(t)

	o, err := NewOracle("djb31", 0, 0)
	assert(err == nil, "oracle: %s", err)

	tab, err := Search([]Entry{{"k", "1"}, {"k", "2"}}, o, 100)
	assert(errors.Is(err, ErrBoundExceeded), "exp bound exceeded, saw %v", err)
	assert(tab == nil, "got a table for duplicate keys")

	// the builder catches it before searching
	b := NewBuilder(o, 100)
	err = b.Add("k", "1")
	assert(err == nil, "add: %s", err)
	err = b.Add("k", "2")
	assert(errors.Is(err, ErrExists), "exp duplicate, saw %v", err)
}

func TestSearchBadBucket(t *testing.T) {
	assert := newAsserter(t)

	o := OracleFunc(func(_ string, c uint64) uint64 {
		return c
	})

	_, err := Search([]Entry{{"a", "1"}}, o, 0)
	assert(errors.Is(err, ErrBadBucket), "exp bad bucket, saw %v", err)
}

// every oracle produces a collision free, minimal table where each
// key sits at its own bucket.
func TestSearchOracles(t *testing.T) {
	ents := wordEntries(keyw)

	for _, nm := range Oracles() {
		t.Run(nm, func(t *testing.T) {
			assert := newAsserter(t)

			o, err := NewOracle(nm, 0x5eed, 64)
			assert(err == nil, "oracle: %s", err)

			tab, err := Search(ents, o, 0)
			assert(err == nil, "search: %s", err)

			c := tab.Cap()
			assert(tab.Trials() == c, "trials %d != cap %d", tab.Trials(), c)
			assert(tab.Len() == len(ents), "len: exp %d, saw %d", len(ents), tab.Len())

			seen := make(map[uint64]string)
			for _, e := range ents {
				j, ok := tab.Find(e.Key)
				assert(ok, "can't find key %s", e.Key)
				assert(j < c, "key %s: bucket %d out of bounds", e.Key, j)
				assert(j == o.Hash(e.Key, c), "key %s: bucket %d != hash %d", e.Key, j, o.Hash(e.Key, c))

				x, ok := seen[j]
				assert(!ok, "bucket %d already holds key %s", j, x)
				seen[j] = e.Key

				v, ok := tab.Lookup(e.Key)
				assert(ok && v == e.Value, "key %s: exp value %s, saw %s", e.Key, e.Value, v)
			}

			// empty slots must not be claimable by any key
			for i := uint64(0); i < c; i++ {
				if _, ok := tab.Slot(i); ok {
					continue
				}
				for _, e := range ents {
					assert(o.Hash(e.Key, c) != i, "empty slot %d is the bucket of %s", i, e.Key)
				}
			}

			// no smaller capacity separates the keys
			for s := uint64(1); s < c; s++ {
				b := make(map[uint64]bool)
				dup := false
				for _, e := range ents {
					h := o.Hash(e.Key, s)
					dup = dup || b[h]
					b[h] = true
				}
				assert(dup, "capacity %d < %d is collision free", s, c)
			}

			_, ok := tab.Find("not-a-keyword")
			assert(!ok, "found a key not in the listing")
		})
	}
}

func TestSearchDeterministic(t *testing.T) {
	assert := newAsserter(t)

	ents := wordEntries(keyw)

	o1, _ := NewOracle("fasthash", 0xdeadbeefbaadf00d, 0)
	o2, _ := NewOracle("fasthash", 0xdeadbeefbaadf00d, 16)

	a, err := Search(ents, o1, 0)
	assert(err == nil, "search 1: %s", err)
	b, err := Search(ents, o2, 0)
	assert(err == nil, "search 2: %s", err)

	assert(a.Cap() == b.Cap(), "cap mismatch: %d vs. %d", a.Cap(), b.Cap())
	if diff := cmp.Diff(slotList(a), slotList(b)); diff != "" {
		t.Errorf("slots differ (-first, +second):\n%s", diff)
	}
}

// capacities only grow, one at a time, from 1 to the final capacity
func TestSearchMonotonic(t *testing.T) {
	assert := newAsserter(t)

	base, _ := NewOracle("djb31", 0, 0)

	var caps []uint64
	o := OracleFunc(func(key string, c uint64) uint64 {
		caps = append(caps, c)
		return base.Hash(key, c)
	})

	tab, err := Search(wordEntries(keyw), o, 0)
	assert(err == nil, "search: %s", err)
	assert(uint64(len(caps)) == tab.Probes(), "probes: exp %d, saw %d", len(caps), tab.Probes())
	assert(caps[0] == 1, "first trial at capacity %d", caps[0])

	for i := 1; i < len(caps); i++ {
		d := caps[i] - caps[i-1]
		assert(caps[i] >= caps[i-1] && d <= 1, "probe %d: capacity %d after %d", i, caps[i], caps[i-1])
	}
	assert(caps[len(caps)-1] == tab.Cap(), "last capacity %d != %d", caps[len(caps)-1], tab.Cap())
}

// The first key to claim a bucket in the final trial keeps it; replaying
// the whole listing at that capacity gives the same assignment as
// placing keys one by one.
func TestSearchReplay(t *testing.T) {
	assert := newAsserter(t)

	o, _ := NewOracle("siphash", 42, 0)
	ents := wordEntries(keyw)

	tab, err := Search(ents, o, 0)
	assert(err == nil, "search: %s", err)

	c := tab.Cap()
	want := make([]Entry, c)
	for _, e := range ents {
		want[o.Hash(e.Key, c)] = e
	}

	got := make([]Entry, c)
	tab.IterFunc(func(i uint64, e Entry) error {
		got[i] = e
		return nil
	})

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("assignment differs (-want, +got):\n%s", diff)
	}
}

func TestSearchHTTPKeywords(t *testing.T) {
	assert := newAsserter(t)

	o, _ := NewOracle(DefaultOracle, 0, 0)

	tests := []struct {
		fn    string
		cap   uint64
		where map[string]uint64
	}{
		{"testdata/method.txt", 15, map[string]uint64{"HEAD": 0, "GET": 10, "OPTIONS": 12}},
		{"testdata/hdr.txt", 14, map[string]uint64{"Host": 1, "Accept": 7, "Accept-Datetime": 11}},
		{"testdata/version.txt", 1, map[string]uint64{"HTTP/1.1": 0}},
	}

	for _, tc := range tests {
		l, err := ParseListingFile(tc.fn)
		assert(err == nil, "%s: %s", tc.fn, err)

		tab, err := Search(l.Entries, o, 0)
		assert(err == nil, "%s: %s", tc.fn, err)
		assert(tab.Cap() == tc.cap, "%s: cap: exp %d, saw %d", tc.fn, tc.cap, tab.Cap())

		for k, exp := range tc.where {
			j, ok := tab.Find(k)
			assert(ok && j == exp, "%s: key %s: exp bucket %d, saw %d", tc.fn, k, exp, j)
		}
	}
}

func slotList(t *Table) []Entry {
	v := make([]Entry, t.Cap())
	for i := range v {
		v[i], _ = t.Slot(uint64(i))
	}
	return v
}
