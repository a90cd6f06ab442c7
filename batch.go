// batch.go -- search several listings concurrently
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
	"runtime"

	"github.com/creachadair/taskgroup"
)

// SearchAll builds one table per listing, running the searches
// concurrently. Each listing is validated like a Builder would (no empty or
// duplicate keys) before its search starts. The tables are returned in
// the order of 'v'. A zero 'limit' selects DefaultMaxCapacity.
//
// 'o' is shared by all searches and must be safe for concurrent use.
func SearchAll(v []Listing, o Oracle, limit uint64) ([]*Table, error) {
	tabs := make([]*Table, len(v))

	g, run := taskgroup.New(nil).Limit(runtime.NumCPU())
	for i := range v {
		i := i
		run(func() error {
			b := NewBuilder(o, limit)
			if _, err := b.AddEntries(v[i].Entries); err != nil {
				return fmt.Errorf("%s: %w", v[i].Name, err)
			}

			t, err := b.Freeze()
			if err != nil {
				return fmt.Errorf("%s: %w", v[i].Name, err)
			}

			// each task owns exactly one slot
			tabs[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tabs, nil
}
