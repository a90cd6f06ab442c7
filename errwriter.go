// errwriter.go -- io.writer that handles errors gracefully
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
	"io"
)

// errWriter remembers the first write error; subsequent writes are
// dropped. It lets renderers and the table writer emit a long run of
// Fprintf's and check for failure once.
type errWriter struct {
	w   io.Writer
	err error
}

func newErrWriter(w io.Writer) *errWriter {
	return &errWriter{w: w}
}

func (e *errWriter) Write(b []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}

	n, err := e.w.Write(b)
	switch {
	case err != nil:
		e.err = err
	case n != len(b):
		e.err = errShortWrite("write", len(b), n)
	}
	return n, e.err
}

func (e *errWriter) Error() error {
	return e.err
}

// write all bytes
func writeAll(w io.Writer, buf []byte) (int, error) {
	n, err := w.Write(buf)
	if err != nil {
		return 0, err
	}
	if n != len(buf) {
		return n, errShortWrite("perfhash", len(buf), n)
	}
	return n, nil
}
