// oracle.go -- string hash functions used to place keys in buckets
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
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"github.com/hashicorp/golang-lru/arc/v2"
	"github.com/opencoff/go-fasthash"
)

// Oracle maps a key to a bucket for a given table capacity. An Oracle
// must be deterministic and return a value in [0, capacity) for every
// key and every capacity > 0. Oracles returned by NewOracle are safe for
// concurrent use.
type Oracle interface {
	// Hash returns the bucket for 'key' in a table of 'capacity' slots
	Hash(key string, capacity uint64) uint64

	// Name identifies the hash family; it is recorded in generated
	// tables so readers can recompute buckets.
	Name() string
}

// OracleFunc adapts an ordinary function to the Oracle interface.
type OracleFunc func(key string, capacity uint64) uint64

// Hash calls f(key, capacity)
func (f OracleFunc) Hash(key string, capacity uint64) uint64 {
	return f(key, capacity)
}

// Name returns "func"
func (f OracleFunc) Name() string {
	return "func"
}

// DefaultOracle is the hash family used when none is named: the
// djb-style multiply-by-31 string hash.
const DefaultOracle = "djb31"

// Max length of an oracle name; it must fit the table file header.
const _MaxOracleName = 16

// hashFamily produces a 64-bit hash of a key; the bucket is that value
// modulo the capacity.
type hashFamily func(seed uint64) func(key string) uint64

var oracles = struct {
	sync.Mutex
	m map[string]hashFamily
}{
	m: make(map[string]hashFamily),
}

func init() {
	registerOracle("djb31", newDJB31)
	registerOracle("fnv1a", newFNV1a)
	registerOracle("fasthash", newFasthash)
	registerOracle("siphash", newSiphash)
	registerOracle("xxhash", newXXHash)
}

func registerOracle(nm string, h hashFamily) {
	if len(nm) > _MaxOracleName {
		panic(fmt.Sprintf("oracle name %s too long", nm))
	}

	oracles.Lock()
	if _, ok := oracles.m[nm]; ok {
		panic(fmt.Sprintf("%s already registered", nm))
	}
	oracles.m[nm] = h
	oracles.Unlock()
}

// Oracles returns the sorted names of all registered hash families.
func Oracles() []string {
	oracles.Lock()
	defer oracles.Unlock()

	v := make([]string, 0, len(oracles.m))
	for nm := range oracles.m {
		v = append(v, nm)
	}
	sort.Strings(v)
	return v
}

// NewOracle returns the named hash family keyed by 'seed'. If 'cache' is
// positive, the 64-bit hash of upto 'cache' keys is memoized: a capacity
// search rehashes every key on each trial but the raw hash does not depend
// on the capacity.
func NewOracle(name string, seed uint64, cache int) (Oracle, error) {
	oracles.Lock()
	h, ok := oracles.m[name]
	oracles.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownOracle, name)
	}

	o := &modOracle{
		name: name,
		seed: seed,
		sum:  h(seed),
	}

	if cache > 0 {
		c, err := arc.NewARC[string, uint64](cache)
		if err != nil {
			return nil, err
		}
		o.cache = c
	}
	return o, nil
}

// modOracle reduces a 64-bit string hash modulo the capacity
type modOracle struct {
	name  string
	seed  uint64
	sum   func(key string) uint64
	cache *arc.ARCCache[string, uint64]
}

var _ Oracle = &modOracle{}

func (o *modOracle) Name() string {
	return o.name
}

func (o *modOracle) Hash(key string, capacity uint64) uint64 {
	return o.Sum64(key) % capacity
}

// Sum64 returns the full 64-bit hash of key
func (o *modOracle) Sum64(key string) uint64 {
	if o.cache == nil {
		return o.sum(key)
	}

	if h, ok := o.cache.Get(key); ok {
		return h
	}

	h := o.sum(key)
	o.cache.Add(key, h)
	return h
}

// oracleSeed returns the seed of oracles built by NewOracle; 0 otherwise.
func oracleSeed(o Oracle) uint64 {
	if m, ok := o.(*modOracle); ok {
		return m.seed
	}
	return 0
}

// djb31 is the hash the keyword tables of the http lexer were generated
// with: h = 5381, h = h*31 + c. A non-zero seed replaces 5381.
func newDJB31(seed uint64) func(string) uint64 {
	if seed == 0 {
		seed = 5381
	}
	return func(key string) uint64 {
		h := seed
		for i := 0; i < len(key); i++ {
			h = h*31 + uint64(key[i])
		}
		return h
	}
}

const (
	// FNV-1a 64-bit parameters
	offset64 = 14695981039346656037
	prime64  = 1099511628211
)

// 64-bit FNV-1a; the seed is folded into the offset basis
func newFNV1a(seed uint64) func(string) uint64 {
	basis := uint64(offset64)
	for i := 0; i < 64; i += 8 {
		basis ^= (seed >> i) & 0xff
		basis *= prime64
	}

	return func(key string) uint64 {
		h := basis
		for i := 0; i < len(key); i++ {
			h ^= uint64(key[i])
			h *= prime64
		}
		return h
	}
}

func newFasthash(seed uint64) func(string) uint64 {
	return func(key string) uint64 {
		return fasthash.Hash64(seed, []byte(key))
	}
}

// siphash-2-4 keyed by (seed, mix(seed))
func newSiphash(seed uint64) func(string) uint64 {
	k0, k1 := seed, mix(seed)
	return func(key string) uint64 {
		return siphash.Hash(k0, k1, []byte(key))
	}
}

// xxhash64; a non-zero seed is hashed ahead of the key
func newXXHash(seed uint64) func(string) uint64 {
	if seed == 0 {
		return xxhash.Sum64String
	}

	var pfx [8]byte
	binary.LittleEndian.PutUint64(pfx[:], seed)
	return func(key string) uint64 {
		d := xxhash.New()
		d.Write(pfx[:])
		d.WriteString(key)
		return d.Sum64()
	}
}
