// fsck.go -- 'fsck' command implementation
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

package main

import (
	"fmt"
	"os"

	"github.com/opencoff/go-perfhash"
	flag "github.com/opencoff/pflag"
)

type fsckCommand struct{}

func init() {
	m := fsckCommand{}
	registerCommand("fsck", &m)
}

func (m *fsckCommand) run(args []string, opt *Option) (err error) {
	var db *perfhash.TableReader

	fs := flag.NewFlagSet("fsck", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		fmt.Printf(`Usage: fsck [options] DB

where  'DB' is the name of a table file

Options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	err = fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("fsck: %w", err)
	}

	args = fs.Args()
	if len(args) < 1 {
		return fmt.Errorf("fsck: insufficient args")
	}

	fn := args[0]
	db, err = perfhash.OpenTable(fn, 1000)
	if err != nil {
		return fmt.Errorf("fsck: %w", err)
	}

	defer db.Close()

	// every record must pass its checksum and sit at its key's bucket
	o := db.Oracle()
	n := 0
	err = db.IterFunc(func(i uint64, k string, _ []byte) error {
		if j := o.Hash(k, db.Cap()); j != i {
			return fmt.Errorf("key '%s' at bucket %d, hashes to %d", k, i, j)
		}
		n++
		return nil
	})
	if err != nil {
		return fmt.Errorf("fsck: %s: %w", fn, err)
	}

	if n != db.Len() {
		return fmt.Errorf("fsck: %s: %d records, header says %d", fn, n, db.Len())
	}

	fmt.Fprintf(opt.Stdout(), "%s", db.Desc())
	return nil
}
