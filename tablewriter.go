// tablewriter.go -- serialize a frozen table to a constant binary file
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
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/atomicfile"
	"github.com/dchest/siphash"
)

// The table file has the following general structure:
//   - 64 byte file header: big-endian encoding of all multibyte ints
//      * magic    [4]byte
//      * oracle   [16]byte name of the hash oracle, NUL padded
//      * seed     uint64  oracle seed
//      * salt     [16]byte random salt for siphash record integrity
//      * cap      uint64  table capacity
//      * nkeys    uint32  number of occupied slots
//      * offtbl   uint64  file offset of the slot table (page-aligned)
//
//   - Contiguous series of records, one per occupied slot in bucket order:
//      * cksum    uint64  siphash checksum of offset, key, value (big endian)
//      * key      []byte
//      * val      []byte
//
//   - Possibly a gap until the next PageSize boundary
//   - The slot table; it is memory mapped by readers and all words are
//     little-endian:
//      * occupancy bitvector: word count followed by the words; bit 'i'
//        is set if bucket 'i' is occupied
//      * nkeys pairs of uint64: record offset, klen<<32 | vlen; pair 'j'
//        belongs to the bucket whose rank is 'j'
//   - 32 bytes of strong checksum (SHA512_256) over the file header and
//     the slot table.

const (
	_Magic = "PHT1"

	_HeaderSize = 64
	_TrailerSize = 32
)

// WriteTableFile writes table 't' to file 'fn'. The file is replaced
// atomically: readers see either the old file or the complete new one.
// The table's oracle must be one created by NewOracle().
func WriteTableFile(fn string, t *Table) error {
	var b bytes.Buffer

	if _, err := WriteTable(&b, t); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}

	return atomicfile.WriteData(fn, b.Bytes(), 0644)
}

// WriteTable marshals table 't' to 'w' and returns the number of bytes
// written. The slot table is page aligned relative to the start of the
// output; 'w' should be at the beginning of a file.
func WriteTable(w io.Writer, t *Table) (int, error) {
	o := t.Oracle()
	nm := o.Name()
	if _, err := NewOracle(nm, 0, 0); err != nil {
		return 0, fmt.Errorf("table: can't serialize oracle: %w", err)
	}

	var buf bytes.Buffer

	salt := randbytes(16)

	// Leave some space for a header; we fill this in at the end
	var hdr [_HeaderSize]byte
	buf.Write(hdr[:])

	// records in bucket order; we remember the offset and length of each
	slots := make([]uint64, 0, 2*t.Len())
	err := t.IterFunc(func(_ uint64, e Entry) error {
		off := uint64(buf.Len())
		writeRecord(&buf, salt, off, e)

		lens := uint64(len(e.Key))<<32 | uint64(len(e.Value))
		slots = append(slots, off, lens)
		return nil
	})
	if err != nil {
		return 0, err
	}

	// We align the slot table to pagesize - so we can mmap it when we read it back.
	pgsz := uint64(os.Getpagesize())
	offtbl := alignUp(uint64(buf.Len()), pgsz)
	buf.Write(make([]byte, offtbl-uint64(buf.Len())))

	// header is encoded in big-endian format
	be := binary.BigEndian
	copy(hdr[:4], _Magic)
	i := 4
	copy(hdr[i:i+_MaxOracleName], nm)
	i += _MaxOracleName
	be.PutUint64(hdr[i:i+8], oracleSeed(o))
	i += 8
	i += copy(hdr[i:i+16], salt)
	be.PutUint64(hdr[i:i+8], t.Cap())
	i += 8
	be.PutUint32(hdr[i:i+4], uint32(t.Len()))
	i += 4
	be.PutUint64(hdr[i:i+8], offtbl)
	copy(buf.Bytes()[:_HeaderSize], hdr[:])

	// calculate strong checksum for the header and slot table
	h := sha512.New512_256()
	h.Write(hdr[:])

	tee := io.MultiWriter(&buf, h)
	if _, err := t.occ.MarshalBinary(tee); err != nil {
		return 0, err
	}
	if _, err := writeAll(tee, u64sToByteSlice(slots)); err != nil {
		return 0, err
	}

	// Trailer is the checksum of everything
	buf.Write(h.Sum(nil))

	return writeAll(w, buf.Bytes())
}

// writeRecord appends a record for 'e' at offset 'off': checksum, key, value.
func writeRecord(b *bytes.Buffer, salt []byte, off uint64, e Entry) {
	var c [8]byte

	binary.BigEndian.PutUint64(c[:], recordSum(salt, off, e.Key, []byte(e.Value)))

	b.Write(c[:])
	b.WriteString(e.Key)
	b.WriteString(e.Value)
}

// siphash-2-4 over the record offset, key and value
func recordSum(salt []byte, off uint64, key string, val []byte) uint64 {
	var o [8]byte

	binary.BigEndian.PutUint64(o[:], off)

	h := siphash.New(salt)
	h.Write(o[:])
	h.Write([]byte(key))
	h.Write(val)
	return h.Sum64()
}
