// pack.go -- 'pack' command implementation
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
	"time"

	"github.com/opencoff/go-perfhash"
	flag "github.com/opencoff/pflag"
)

type packCommand struct{}

func init() {
	m := packCommand{}
	registerCommand("pack", &m)
}

func (m *packCommand) run(args []string, opt *Option) error {
	var sf searchFlags

	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	sf.add(fs)
	fs.Usage = func() {
		fmt.Printf(`Usage: pack [options] DB INPUT

where:
   DB	    is the name of the output table file
   INPUT    is a listing of KEY=VALUE lines

options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	err := fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	args = fs.Args()
	if len(args) < 2 {
		return fmt.Errorf("pack: insufficient args")
	}

	fn := args[0]
	l, err := perfhash.ParseListingFile(args[1])
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	o, err := sf.oracle(len(l.Entries))
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	b := perfhash.NewBuilder(o, sf.maxcap)
	if _, err = b.AddEntries(l.Entries); err != nil {
		return fmt.Errorf("pack: %s: %w", args[1], err)
	}

	start := time.Now()
	t, err := b.Freeze()
	if err != nil {
		return fmt.Errorf("pack: %s: %w", args[1], err)
	}
	delta := time.Since(start)

	if err = perfhash.WriteTableFile(fn, t); err != nil {
		return fmt.Errorf("pack: %w", err)
	}

	opt.Printf("+ %s: %d keys, capacity %d (%d trials, %d probes) %s\n",
		args[1], t.Len(), t.Cap(), t.Trials(), t.Probes(), delta.Truncate(time.Microsecond).String())
	return nil
}
