// cmds.go -- commands abstraction
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
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/opencoff/go-perfhash"
	flag "github.com/opencoff/pflag"
)

type command interface {
	run(args []string, opt *Option) error
}

var cmds = struct {
	sync.Mutex
	m map[string]command
}{
	m: make(map[string]command),
}

func registerCommand(nm string, cmd command) {
	cmds.Lock()
	if _, ok := cmds.m[nm]; ok {
		panic(fmt.Sprintf("%s already registered", nm))
	}
	cmds.m[nm] = cmd
	cmds.Unlock()
}

func runCommand(args []string, o *Option) error {
	nm := args[0]

	cmds.Lock()
	cmd, ok := cmds.m[nm]
	cmds.Unlock()
	if !ok {
		return fmt.Errorf("unknown command %s", nm)
	}

	return cmd.run(args, o)
}

// Option holds the global options. Diagnostics go to stderr so they
// don't mix with generated source on stdout.
type Option struct {
	verbose bool
	stdout  io.Writer
}

func (o *Option) Printf(s string, v ...interface{}) {
	if o.verbose {
		fmt.Fprintf(os.Stderr, s, v...)
	}
}

// Stdout returns where command output goes; os.Stdout unless set.
func (o *Option) Stdout() io.Writer {
	if o.stdout == nil {
		return os.Stdout
	}
	return o.stdout
}

// searchFlags are the flags shared by commands that build tables
type searchFlags struct {
	hash   string
	seed   uint64
	maxcap uint64
}

func (s *searchFlags) add(fs *flag.FlagSet) {
	hashes := strings.Join(perfhash.Oracles(), ", ")

	fs.StringVarP(&s.hash, "hash", "H", perfhash.DefaultOracle, "Use hash function `H` (one of: "+hashes+")")
	fs.Uint64VarP(&s.seed, "seed", "S", 0, "Seed the hash function with `N`")
	fs.Uint64VarP(&s.maxcap, "max-capacity", "m", perfhash.DefaultMaxCapacity, "Give up if a table needs more than `N` slots")
}

// oracle builds the hash oracle named by the flags; 'n' keys are
// memoized.
func (s *searchFlags) oracle(n int) (perfhash.Oracle, error) {
	return perfhash.NewOracle(s.hash, s.seed, n)
}

// commands returns the sorted names of the registered commands
func commands() []string {
	cmds.Lock()
	defer cmds.Unlock()

	v := make([]string, 0, len(cmds.m))
	for nm := range cmds.m {
		v = append(v, nm)
	}
	sort.Strings(v)
	return v
}
