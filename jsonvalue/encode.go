package jsonvalue

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Marshal returns the compact JSON encoding of v.
func Marshal(v Value) []byte {
	return MarshalIndent(v, "")
}

// MarshalIndent returns the JSON encoding of v with one indent per nesting
// level. The layout matches JavaScript's JSON.stringify(v, null, indent):
// empty containers stay on one line, a single space follows each colon,
// there is no trailing newline, and non-ASCII text is written unescaped.
func MarshalIndent(v Value, indent string) []byte {
	var b bytes.Buffer
	e := encoder{buf: &b, indent: indent}
	e.value(v, 0)
	return b.Bytes()
}

type encoder struct {
	buf    *bytes.Buffer
	indent string
}

func (e *encoder) value(v Value, depth int) {
	switch v.kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindBool:
		if v.b {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case KindNumber:
		e.buf.WriteString(formatNumber(v.s))
	case KindString:
		writeString(e.buf, v.s)
	case KindArray:
		if len(v.arr) == 0 {
			e.buf.WriteString("[]")
			return
		}
		e.buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			e.newline(depth + 1)
			e.value(item, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte(']')
	case KindObject:
		if v.obj.Len() == 0 {
			e.buf.WriteString("{}")
			return
		}
		e.buf.WriteByte('{')
		first := true
		for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				e.buf.WriteByte(',')
			}
			first = false
			e.newline(depth + 1)
			writeString(e.buf, pair.Key)
			e.buf.WriteByte(':')
			if e.indent != "" {
				e.buf.WriteByte(' ')
			}
			e.value(pair.Value, depth+1)
		}
		e.newline(depth)
		e.buf.WriteByte('}')
	}
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(strings.Repeat(e.indent, depth))
}

// writeString quotes s the way JSON.stringify does. Unlike encoding/json it
// leaves <, >, & and U+2028/U+2029 alone.
func writeString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}

// formatNumber rewrites a number literal as JavaScript's Number#toString
// prints the double it parses to: shortest round-trip digits, plain
// notation for magnitudes in [1e-6, 1e21) and exponent notation outside.
// Literals beyond the float64 range become null, as JSON.stringify writes
// Infinity.
func formatNumber(lit string) string {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		if math.IsInf(f, 0) {
			return "null"
		}
		return lit
	}
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}
