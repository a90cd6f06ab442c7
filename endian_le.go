// endian_le.go -- endian conversion for little-endian hosts
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

//go:build 386 || amd64 || arm || arm64 || ppc64le || mipsle || mips64le || riscv64 || loong64 || wasm

package perfhash

import (
	"github.com/alecthomas/unsafeslice"
)

// The slot tables are little-endian on disk; on these hosts the
// mmap'd bytes are used in place.

func bsToUint64Slice(b []byte) []uint64 {
	return unsafeslice.Uint64SliceFromByteSlice(b)
}

func u64sToByteSlice(v []uint64) []byte {
	return unsafeslice.ByteSliceFromUint64Slice(v)
}
