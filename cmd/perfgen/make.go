// make.go -- 'make' command implementation
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
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/creachadair/atomicfile"
	"github.com/opencoff/go-perfhash"
	flag "github.com/opencoff/pflag"
)

type makeCommand struct{}

func init() {
	m := makeCommand{}
	registerCommand("make", &m)
}

func (m *makeCommand) run(args []string, opt *Option) error {
	var sf searchFlags
	var ro perfhash.RenderOptions
	var format, out string

	fs := flag.NewFlagSet("make", flag.ExitOnError)
	fs.SetOutput(os.Stdout)
	sf.add(fs)
	fs.StringVarP(&ro.Name, "name", "n", "", "Use `N` as the include guard (N_H) or namespace")
	fs.StringVarP(&ro.Struct, "struct", "s", "", "Use `S` as the slot type (default "+perfhash.DefaultStruct+" for C)")
	fs.StringVarP(&ro.Package, "package", "p", "", "Use `P` as the Go package name")
	fs.StringVarP(&format, "format", "f", "c", "Render as `F`: 'c' or 'go'")
	fs.StringVarP(&out, "output", "o", "", "Write output to file `O` instead of stdout")
	fs.Usage = func() {
		fmt.Printf(`Usage: make [options] INPUT...

where:
   INPUT    is one or more listing files

Each line of a listing is KEY=VALUE; blank lines and lines starting with
'#' are ignored. Each listing becomes one table named after the file
(without its extension); all tables share one include guard.

options:
`)
		fs.PrintDefaults()
		os.Exit(0)
	}

	err := fs.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("make: %w", err)
	}

	args = fs.Args()
	if len(args) < 1 {
		return fmt.Errorf("make: insufficient args")
	}

	if len(ro.Name) == 0 {
		return fmt.Errorf("make: no name given")
	}

	lists := make([]perfhash.Listing, len(args))
	nkeys := 0
	for i, f := range args {
		lists[i], err = perfhash.ParseListingFile(f)
		if err != nil {
			return fmt.Errorf("make: %w", err)
		}
		nkeys += len(lists[i].Entries)
	}

	o, err := sf.oracle(nkeys)
	if err != nil {
		return fmt.Errorf("make: %w", err)
	}

	start := time.Now()
	tabs, err := perfhash.SearchAll(lists, o, sf.maxcap)
	if err != nil {
		return fmt.Errorf("make: %w", err)
	}
	delta := time.Since(start)

	nt := make([]perfhash.Named, len(tabs))
	for i, t := range tabs {
		nt[i] = perfhash.Named{Name: lists[i].Name, Table: t}
		opt.Printf("+ %s: %d keys, capacity %d (%d trials, %d probes)\n",
			args[i], t.Len(), t.Cap(), t.Trials(), t.Probes())
	}
	opt.Printf("%d tables, %d keys, %s\n", len(tabs), nkeys, delta.Truncate(time.Microsecond).String())

	var buf bytes.Buffer
	if err = perfhash.Render(&buf, format, &ro, nt); err != nil {
		return fmt.Errorf("make: %w", err)
	}

	if len(out) == 0 {
		_, err = opt.Stdout().Write(buf.Bytes())
		return err
	}

	if err = atomicfile.WriteData(out, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("make: %w", err)
	}
	return nil
}
