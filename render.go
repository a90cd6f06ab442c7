// render.go -- render tables as C or Go source
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
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"
)

// Named pairs a table with the identifier it is emitted under
type Named struct {
	Name string
	*Table
}

// RenderOptions control the generated source
type RenderOptions struct {
	// Name scopes the whole output: the C include guard is NAME_H
	Name string

	// Struct is the C struct tag of each slot. For Go output it names
	// the element type; values are then emitted verbatim instead of as
	// string literals.
	Struct string

	// Package is the Go package clause
	Package string
}

// DefaultStruct is the C struct tag used when none is given; it is
// meant to be substituted (or #define'd) by the including code.
const DefaultStruct = "__STRUCT__"

// Render writes 'tabs' to 'w' in the named format: "c" or "go".
func Render(w io.Writer, format string, opt *RenderOptions, tabs []Named) error {
	switch format {
	case "c", "h":
		return RenderC(w, opt, tabs)
	case "go":
		return RenderGo(w, opt, tabs)
	default:
		return fmt.Errorf("%w '%s'", ErrUnknownFormat, format)
	}
}

// RenderC writes a C header: one include guard around a static slot array
// and a capacity constant per table. Empty slots are '{ NULL }'; keys are
// C string literals and values are emitted verbatim.
func RenderC(w io.Writer, opt *RenderOptions, tabs []Named) error {
	guard := ident(opt.Name)
	st := opt.Struct
	if len(st) == 0 {
		st = DefaultStruct
	}

	ew := newErrWriter(w)
	fmt.Fprintf(ew, "#ifndef %s_H\n", guard)
	fmt.Fprintf(ew, "#define %s_H\n\n", guard)

	for _, t := range tabs {
		nm := ident(t.Name)
		c := t.Cap()

		fmt.Fprintf(ew, "static const struct %s %s_hash[%d] = {\n", st, nm, c)
		for i := uint64(0); i < c; i++ {
			e, ok := t.Slot(i)
			if !ok {
				fmt.Fprintf(ew, "\t{ NULL },\n")
				continue
			}
			fmt.Fprintf(ew, "\t{ %s, %s },\n", cQuote(e.Key), e.Value)
		}
		fmt.Fprintf(ew, "};\n")
		fmt.Fprintf(ew, "static const size_t %s_hash_cap = %d;\n\n", nm, c)
	}

	fmt.Fprintf(ew, "#endif /* %s_H */\n", guard)
	return ew.Error()
}

// RenderGo writes a gofmt'd Go source file with a capacity constant and a
// slot array per table. Empty slots are zero values.
func RenderGo(w io.Writer, opt *RenderOptions, tabs []Named) error {
	var b bytes.Buffer

	pkg := opt.Package
	if len(pkg) == 0 {
		pkg = strings.ToLower(ident(opt.Name))
	}

	elem := "struct{ Key, Value string }"
	if len(opt.Struct) > 0 {
		elem = opt.Struct
	}

	fmt.Fprintf(&b, "// Code generated by perfgen; DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	for _, t := range tabs {
		nm := ident(t.Name)
		c := t.Cap()
		o := t.Oracle()

		fmt.Fprintf(&b, "// %sCap is the capacity of %sHash; buckets are %s(key, seed %#x) %% %d.\n",
			nm, nm, o.Name(), oracleSeed(o), c)
		fmt.Fprintf(&b, "const %sCap = %d\n\n", nm, c)
		fmt.Fprintf(&b, "var %sHash = [%sCap]%s{\n", nm, nm, elem)
		for i := uint64(0); i < c; i++ {
			e, ok := t.Slot(i)
			switch {
			case !ok:
				fmt.Fprintf(&b, "{},\n")
			case len(opt.Struct) > 0:
				fmt.Fprintf(&b, "{Key: %s, Value: %s},\n", strconv.Quote(e.Key), e.Value)
			default:
				fmt.Fprintf(&b, "{Key: %s, Value: %s},\n", strconv.Quote(e.Key), strconv.Quote(e.Value))
			}
		}
		fmt.Fprintf(&b, "}\n\n")
	}

	src, err := format.Source(b.Bytes())
	if err != nil {
		return fmt.Errorf("render: go: %w", err)
	}

	_, err = writeAll(w, src)
	return err
}

// ident maps 's' to a C/Go identifier: anything other than letters,
// digits and '_' becomes '_' and a leading digit gets a '_' prefix.
func ident(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
		default:
			c = '_'
		}
		b.WriteByte(c)
	}

	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// cQuote returns 's' as a C string literal
func cQuote(s string) string {
	var b strings.Builder

	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, "\\%03o", c)
				continue
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
