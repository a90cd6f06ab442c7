// lookup.go -- 'lookup' command implementation
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

type lookupCommand struct{}

func init() {
	m := lookupCommand{}
	registerCommand("lookup", &m)
}

func (m *lookupCommand) run(args []string, opt *Option) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		fmt.Printf(`Usage: lookup DB KEY...

Print the value of each KEY in table file DB.
`)
		os.Exit(0)
	}

	err := fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	args = fs.Args()
	if len(args) < 2 {
		return fmt.Errorf("lookup: insufficient args")
	}

	db, err := perfhash.OpenTable(args[0], len(args)-1)
	if err != nil {
		return fmt.Errorf("lookup: %w", err)
	}

	defer db.Close()

	w := opt.Stdout()
	missing := 0
	for _, k := range args[1:] {
		v, err := db.Find(k)
		if err != nil {
			warn("%s: %s", k, err)
			missing++
			continue
		}
		fmt.Fprintf(w, "%s=%s\n", k, v)
	}

	if missing > 0 {
		return fmt.Errorf("lookup: %d of %d keys not found", missing, len(args)-1)
	}
	return nil
}
