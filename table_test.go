// table_test.go -- test suite for the table file writer/reader
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
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

var keep bool

func init() {
	flag.BoolVar(&keep, "keep", false, "Keep test table files")
}

func tableFile(t *testing.T, nm string) string {
	dir := t.TempDir()
	if keep {
		dir = os.TempDir()
		t.Logf("table in %s retained after test\n", dir)
	}
	return filepath.Join(dir, nm)
}

func testTableFile(t *testing.T, oracle string, ents []Entry) {
	assert := newAsserter(t)

	o, err := NewOracle(oracle, rand64(), 0)
	assert(err == nil, "oracle: %s", err)

	b := NewBuilder(o, 0)
	_, err = b.AddEntries(ents)
	assert(err == nil, "add: %s", err)

	tab, err := b.Freeze()
	assert(err == nil, "freeze: %s", err)

	fn := tableFile(t, fmt.Sprintf("%s.pht", oracle))
	err = WriteTableFile(fn, tab)
	assert(err == nil, "write: %s", err)

	rd, err := OpenTable(fn, 10)
	assert(err == nil, "read failed: %s", err)
	defer rd.Close()

	assert(rd.Cap() == tab.Cap(), "cap: exp %d, saw %d", tab.Cap(), rd.Cap())
	assert(rd.Len() == tab.Len(), "len: exp %d, saw %d", tab.Len(), rd.Len())
	assert(rd.Oracle().Name() == oracle, "oracle: exp %s, saw %s", oracle, rd.Oracle().Name())

	// twice: from disk, then from the cache
	for i := 0; i < 2; i++ {
		for _, e := range ents {
			v, err := rd.Find(e.Key)
			assert(err == nil, "can't find key %s: %s", e.Key, err)
			assert(string(v) == e.Value, "key %s: value mismatch; exp '%s', saw '%s'", e.Key, e.Value, string(v))
		}
	}

	// now look for keys not in the table
	for i := 0; i < 10; i++ {
		k := fmt.Sprintf("absent-%d", i)
		v, err := rd.Find(k)
		assert(errors.Is(err, ErrNoKey), "whoa: found key %s => %s", k, string(v))
		_, ok := rd.Lookup(k)
		assert(!ok, "lookup found %s", k)
	}

	n := 0
	err = rd.IterFunc(func(i uint64, k string, v []byte) error {
		j, ok := tab.Find(k)
		assert(ok && i == j, "iter: key %s at bucket %d, exp %d", k, i, j)
		n++
		return nil
	})
	assert(err == nil, "iter: %s", err)
	assert(n == len(ents), "iter: saw %d keys, exp %d", n, len(ents))

	var w bytes.Buffer
	rd.DumpMeta(&w)
	assert(w.Len() > 0, "empty dump")
}

func TestTableFile(t *testing.T) {
	for _, nm := range Oracles() {
		t.Run(nm, func(t *testing.T) {
			testTableFile(t, nm, wordEntries(keyw))
		})
	}
}

func TestTableFileEmptyValues(t *testing.T) {
	ents := wordEntries(keyw)
	for i := range ents {
		ents[i].Value = ""
	}
	testTableFile(t, DefaultOracle, ents)
}

func TestTableFileEmpty(t *testing.T) {
	testTableFile(t, DefaultOracle, nil)
}

func TestTableFileCorrupt(t *testing.T) {
	assert := newAsserter(t)

	b := NewBuilder(nil, 0)
	b.AddEntries(wordEntries(keyw))
	tab, err := b.Freeze()
	assert(err == nil, "freeze: %s", err)

	fn := tableFile(t, "corrupt.pht")
	err = WriteTableFile(fn, tab)
	assert(err == nil, "write: %s", err)

	data, err := os.ReadFile(fn)
	assert(err == nil, "read: %s", err)

	// flip a bit in the slot table: the strong checksum must catch it
	bad := bytes.Clone(data)
	bad[len(bad)-_TrailerSize-1] ^= 1
	err = os.WriteFile(fn, bad, 0644)
	assert(err == nil, "write: %s", err)

	_, err = OpenTable(fn, 0)
	assert(err != nil, "opened a table with a corrupt slot table")

	// flip a bit in a record: only that lookup fails
	bad = bytes.Clone(data)
	bad[_HeaderSize+8] ^= 1
	err = os.WriteFile(fn, bad, 0644)
	assert(err == nil, "write: %s", err)

	rd, err := OpenTable(fn, 0)
	assert(err == nil, "open: %s", err)
	defer rd.Close()

	fails := 0
	for _, s := range keyw {
		if _, err := rd.Find(s); err != nil {
			fails++
		}
	}
	assert(fails == 1, "exp 1 corrupt record, saw %d", fails)

	// bad magic
	bad = bytes.Clone(data)
	copy(bad, "XXXX")
	err = os.WriteFile(fn, bad, 0644)
	assert(err == nil, "write: %s", err)
	_, err = OpenTable(fn, 0)
	assert(err != nil, "opened a table with bad magic")
}

func TestTableFileOracleFunc(t *testing.T) {
	o := OracleFunc(func(key string, c uint64) uint64 { return uint64(len(key)) % c })
	tab, err := Search([]Entry{{"a", "1"}}, o, 0)
	if err != nil {
		t.Fatalf("search: %s", err)
	}

	var b bytes.Buffer
	if _, err := WriteTable(&b, tab); !errors.Is(err, ErrUnknownOracle) {
		t.Errorf("exp unknown oracle, saw %v", err)
	}
}
