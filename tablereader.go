// tablereader.go -- query a table file built by WriteTableFile()
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
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/opencoff/go-mmap"
)

// TableReader represents the query interface for a previously written
// table file. Lookups hash the key with the oracle recorded in the file,
// so they cost one hash and at most one record read. A TableReader is
// safe for concurrent use.
type TableReader struct {
	oracle Oracle

	cache *arc.ARCCache[string, []byte]

	// memory mapped occupancy bits and slot table
	occ   *bitVector
	slots []uint64

	cap    uint64
	nkeys  uint64
	seed   uint64
	salt   []byte
	offtbl uint64

	// original mmap slice
	mm *mmap.Mapping
	fd *os.File
	fn string
}

// OpenTable reads a previously written table in file 'fn' and prepares it
// for querying. Values are opportunistically cached after reading from
// disk. We retain upto 'cache' number of records in memory (default 128).
func OpenTable(fn string, cache int) (rd *TableReader, err error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			fd.Close()
		}
	}()

	// Number of records to cache
	if cache <= 0 {
		cache = 128
	}

	rd = &TableReader{
		fd: fd,
		fn: fn,
	}

	st, err := fd.Stat()
	if err != nil {
		return nil, fmt.Errorf("%s: can't stat: %w", fn, err)
	}

	if st.Size() < (_HeaderSize + _TrailerSize) {
		return nil, fmt.Errorf("%s: file too small or corrupted", fn)
	}

	var hdrb [_HeaderSize]byte

	_, err = io.ReadFull(fd, hdrb[:])
	if err != nil {
		return nil, fmt.Errorf("%s: can't read header: %w", fn, err)
	}

	oracle, err := rd.decodeHeader(hdrb[:], st.Size())
	if err != nil {
		return nil, err
	}

	if err = rd.verifyChecksum(hdrb[:], st.Size()); err != nil {
		return nil, err
	}

	// Now, we are certain that the header and the slot table are
	// valid and uncorrupted.

	rd.oracle, err = NewOracle(oracle, rd.seed, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	rd.cache, err = arc.NewARC[string, []byte](cache)
	if err != nil {
		return nil, err
	}

	// mmap the slot table
	mmapsz := st.Size() - int64(rd.offtbl) - _TrailerSize
	mm := mmap.New(fd)

	mapping, err := mm.Map(mmapsz, int64(rd.offtbl), mmap.PROT_READ, mmap.F_READAHEAD)
	if err != nil {
		return nil, fmt.Errorf("%s: can't mmap %d bytes at off %d: %w",
			fn, mmapsz, rd.offtbl, err)
	}

	rd.mm = mapping
	if err = rd.decodeSlots(mapping.Bytes()); err != nil {
		mapping.Unmap()
		return nil, err
	}

	return rd, nil
}

// Len returns the number of keys in the table
func (rd *TableReader) Len() int {
	return int(rd.nkeys)
}

// Cap returns the capacity (slot count) of the table
func (rd *TableReader) Cap() uint64 {
	return rd.cap
}

// Oracle returns the hash oracle recorded in the file
func (rd *TableReader) Oracle() Oracle {
	return rd.oracle
}

// Close closes the table file
func (rd *TableReader) Close() {
	rd.mm.Unmap()
	rd.fd.Close()
	rd.cache.Purge()
	rd.occ = nil
	rd.slots = nil
	rd.fd = nil
	rd.fn = ""
}

// Lookup looks up 'key' in the table and returns the corresponding value.
// If the key is not found, value is nil and returns false.
func (rd *TableReader) Lookup(key string) ([]byte, bool) {
	v, err := rd.Find(key)
	if err != nil {
		return nil, false
	}

	return v, true
}

// Find looks up 'key' in the table and returns the corresponding value.
// It returns an error if the key is not found or the disk i/o failed or
// the record checksum failed.
func (rd *TableReader) Find(key string) ([]byte, error) {
	if v, ok := rd.cache.Get(key); ok {
		return v, nil
	}

	// Not in cache. So, go to disk and find it.
	i := rd.oracle.Hash(key, rd.cap)
	if i >= rd.cap || !rd.occ.IsSet(i) {
		return nil, ErrNoKey
	}

	k, val, err := rd.record(rd.occ.Rank(i))
	if err != nil {
		return nil, err
	}

	if k != key {
		return nil, ErrNoKey
	}

	rd.cache.Add(key, val)
	return val, nil
}

// IterFunc iterates through every record of the table in bucket order
// and calls 'fp' on each. If the called function returns non-nil, it stops
// the iteration and the error is propogated to the caller.
func (rd *TableReader) IterFunc(fp func(bucket uint64, key string, val []byte) error) error {
	var j uint64

	for i := uint64(0); i < rd.cap; i++ {
		if !rd.occ.IsSet(i) {
			continue
		}

		k, v, err := rd.record(j)
		if err != nil {
			return fmt.Errorf("iter: bucket %d: read-record: %w", i, err)
		}
		j++

		if err := fp(i, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Desc provides a human description of the table
func (rd *TableReader) Desc() string {
	var w strings.Builder

	fmt.Fprintf(&w, "PHT: %d keys in %d slots, oracle %s <seed %#x>, record-salt %#x, slots at %#x\n",
		rd.nkeys, rd.cap, rd.oracle.Name(), rd.seed, rd.salt, rd.offtbl)
	return w.String()
}

// DumpMeta dumps the metadata and slot table to io.Writer 'w'
func (rd *TableReader) DumpMeta(w io.Writer) {
	fmt.Fprintf(w, "%s", rd.Desc())

	var j uint64
	for i := uint64(0); i < rd.cap; i++ {
		if !rd.occ.IsSet(i) {
			fmt.Fprintf(w, "  %3d: -\n", i)
			continue
		}

		off, klen, vlen := rd.slot(j)
		fmt.Fprintf(w, "  %3d: %d+%d bytes at %#x\n", i, klen, vlen, off)
		j++
	}
}

// return the offset and key/value lengths of the j'th record
func (rd *TableReader) slot(j uint64) (uint64, uint32, uint32) {
	off := rd.slots[2*j]
	lens := rd.slots[2*j+1]
	return off, uint32(lens >> 32), uint32(lens)
}

// read the j'th record; calculate the record checksum, validate it and
// return the key and value.
func (rd *TableReader) record(j uint64) (string, []byte, error) {
	off, klen, vlen := rd.slot(j)
	data := make([]byte, 8+uint64(klen)+uint64(vlen))

	if _, err := rd.fd.ReadAt(data, int64(off)); err != nil {
		return "", nil, err
	}

	csum := binary.BigEndian.Uint64(data[:8])
	key := string(data[8 : 8+klen])
	val := data[8+klen:]

	exp := recordSum(rd.salt, off, key, val)
	if csum != exp {
		return "", nil, fmt.Errorf("%s: corrupted record at off %d (exp %#x, saw %#x)", rd.fn, off, exp, csum)
	}
	return key, val, nil
}

// decode the mmap'd occupancy bits and slot pairs
func (rd *TableReader) decodeSlots(bs []byte) error {
	occ, n, err := unmarshalBitVector(bs)
	if err != nil {
		return fmt.Errorf("%s: slot table: %w", rd.fn, err)
	}

	if occ.Size() < rd.cap {
		return fmt.Errorf("%s: occupancy has %d bits, capacity %d", rd.fn, occ.Size(), rd.cap)
	}

	if pop := occ.ComputeRank(); pop != rd.nkeys {
		return fmt.Errorf("%s: occupancy has %d bits set, exp %d", rd.fn, pop, rd.nkeys)
	}

	sz := rd.nkeys * 16
	if uint64(len(bs))-n < sz {
		return fmt.Errorf("%s: slot table: %w", rd.fn, ErrTooSmall)
	}

	rd.occ = occ
	if sz > 0 {
		rd.slots = bsToUint64Slice(bs[n : n+sz])
	}
	return nil
}

// Verify checksum of all metadata: slot table and the file header.
// We know that offtbl is within the size bounds of the file - see decodeHeader() below.
// sz is the actual file size (includes the header we already read)
func (rd *TableReader) verifyChecksum(hdrb []byte, sz int64) error {
	h := sha512.New512_256()
	h.Write(hdrb)

	// remsz is the size of the slot table: everything between
	// offtbl and the trailer.
	remsz := sz - int64(rd.offtbl) - _TrailerSize

	nw, err := io.Copy(h, io.NewSectionReader(rd.fd, int64(rd.offtbl), remsz))
	if err != nil {
		return fmt.Errorf("%s: metadata i/o error: %w", rd.fn, err)
	}
	if nw != remsz {
		return fmt.Errorf("%s: partial read while verifying checksum, exp %d, saw %d", rd.fn, remsz, nw)
	}

	var expsum [_TrailerSize]byte

	// Read the trailer -- which is the expected checksum
	if _, err = rd.fd.ReadAt(expsum[:], sz-_TrailerSize); err != nil {
		return fmt.Errorf("%s: checksum i/o error: %w", rd.fn, err)
	}

	csum := h.Sum(nil)
	if subtle.ConstantTimeCompare(csum[:], expsum[:]) != 1 {
		return fmt.Errorf("%s: checksum failure; exp %#x, saw %#x", rd.fn, expsum[:], csum[:])
	}
	return nil
}

// entry condition: b is _HeaderSize bytes long. Returns the oracle name.
func (rd *TableReader) decodeHeader(b []byte, sz int64) (string, error) {
	magic := string(b[:4])
	if magic != _Magic {
		return "", fmt.Errorf("%s: bad file magic <%s>", rd.fn, magic)
	}

	be := binary.BigEndian
	i := 4

	nm := b[i : i+_MaxOracleName]
	if j := bytes.IndexByte(nm, 0); j >= 0 {
		nm = nm[:j]
	}
	i += _MaxOracleName

	rd.seed = be.Uint64(b[i : i+8])
	i += 8
	rd.salt = append([]byte(nil), b[i:i+16]...)
	i += 16
	rd.cap = be.Uint64(b[i : i+8])
	i += 8
	rd.nkeys = uint64(be.Uint32(b[i : i+4]))
	i += 4
	rd.offtbl = be.Uint64(b[i : i+8])

	if rd.offtbl < _HeaderSize || rd.offtbl >= uint64(sz-_TrailerSize) {
		return "", fmt.Errorf("%s: corrupt header0", rd.fn)
	}

	if rd.cap == 0 || rd.nkeys > rd.cap {
		return "", fmt.Errorf("%s: corrupt header1", rd.fn)
	}

	return string(nm), nil
}
