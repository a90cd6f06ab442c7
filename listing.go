// listing.go -- read KEY=VALUE listings
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Listing is a named, ordered sequence of entries; typically one input
// file. The name becomes the table identifier in generated code.
type Listing struct {
	Name    string
	Entries []Entry
}

// ParseListingFile reads the listing in file 'fn'. The listing is named
// after the file's base name without its extension.
func ParseListingFile(fn string) (Listing, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return Listing{}, err
	}

	defer fd.Close()

	v, err := parseListing(fd, fn)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Name: ListingName(fn), Entries: v}, nil
}

// ParseListing reads entries from 'r'. Each line is trimmed of surrounding
// white space and must have exactly one '=' separating a non-empty key
// from its value. Empty lines and lines beginning with '#' are skipped.
// Duplicate keys are not checked here; see CheckDuplicates().
func ParseListing(r io.Reader) ([]Entry, error) {
	return parseListing(r, "<input>")
}

func parseListing(r io.Reader, who string) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	ents := make([]Entry, 0, 64)

	for n := 1; sc.Scan(); n++ {
		s := strings.TrimSpace(sc.Text())
		if len(s) == 0 || s[0] == '#' {
			continue
		}

		k, v, ok := strings.Cut(s, "=")
		if !ok || strings.Contains(v, "=") {
			return nil, fmt.Errorf("%s:%d: %w: need exactly one '=' in '%s'", who, n, ErrMalformed, s)
		}
		if len(k) == 0 {
			return nil, fmt.Errorf("%s:%d: %w: %w", who, n, ErrMalformed, ErrEmptyKey)
		}

		ents = append(ents, Entry{k, v})
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", who, err)
	}
	return ents, nil
}

// ListingName returns the table name for input file 'fn': its base name
// without extension.
func ListingName(fn string) string {
	b := filepath.Base(fn)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
