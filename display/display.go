// Package display renders a bencode.Value as an indented, human-readable
// tree: dicts one entry per line with a trailing comma, lists inline,
// strings quoted or shown as b"..." when not valid UTF-8. Rendering is
// bounded so an adversarial or merely huge tree cannot produce unbounded
// output.
package display

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/omkarkirpan/bencedit/bencode"
)

const (
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth = 2
	// DepthLimit is the nesting depth beyond which containers render as
	// an opaque {...}/[...] placeholder instead of their contents.
	DepthLimit = 5
	// StepLimit bounds the number of values the renderer will emit
	// before it cuts off with a truncation marker.
	StepLimit = 2000
	// RootStringTruncate is the byte length beyond which the top-level
	// string value is truncated.
	RootStringTruncate = 32
	// NestedStringTruncate is the byte length beyond which a string
	// nested inside a container is truncated.
	NestedStringTruncate = 8
)

// Render returns the pretty-printed form of v.
func Render(v bencode.Value) string {
	p := &printer{}
	p.renderValue(v, 0, true)
	if p.truncated {
		p.buf.WriteString("\n... <truncated: step limit reached>")
	}
	return p.buf.String()
}

type printer struct {
	buf       strings.Builder
	steps     int
	truncated bool
}

func (p *printer) renderValue(v bencode.Value, depth int, isRoot bool) {
	if p.truncated {
		return
	}
	p.steps++
	if p.steps > StepLimit {
		p.truncated = true
		return
	}

	switch v.Kind() {
	case bencode.KindInt:
		n, _ := v.AsInt()
		fmt.Fprintf(&p.buf, "%d", n)
	case bencode.KindString:
		b, _ := v.AsBytes()
		p.renderString(b, isRoot)
	case bencode.KindDict:
		if depth >= DepthLimit {
			p.buf.WriteString("{...}")
			return
		}
		p.renderDict(v, depth)
	case bencode.KindList:
		if depth >= DepthLimit {
			p.buf.WriteString("[...]")
			return
		}
		p.renderList(v, depth)
	}
}

func (p *printer) renderDict(v bencode.Value, depth int) {
	d, _ := v.AsDict()
	if d.Len() == 0 {
		p.buf.WriteString("{}")
		return
	}
	p.buf.WriteString("{\n")
	indent := strings.Repeat(" ", (depth+1)*IndentWidth)
	for _, key := range d.Keys() {
		if p.truncated {
			break
		}
		val, _ := d.Get(key)
		p.buf.WriteString(indent)
		p.renderString(key, false)
		p.buf.WriteString(": ")
		p.renderValue(val, depth+1, false)
		p.buf.WriteString(",\n")
	}
	p.buf.WriteString(strings.Repeat(" ", depth*IndentWidth))
	p.buf.WriteString("}")
}

func (p *printer) renderList(v bencode.Value, depth int) {
	l, _ := v.AsList()
	if l.Len() == 0 {
		p.buf.WriteString("[]")
		return
	}
	p.buf.WriteString("[")
	for i := 0; i < l.Len(); i++ {
		if p.truncated {
			break
		}
		if i > 0 {
			p.buf.WriteString(", ")
		}
		item, _ := l.At(i)
		p.renderValue(item, depth+1, false)
	}
	p.buf.WriteString("]")
}

func (p *printer) renderString(b []byte, isRoot bool) {
	limit := NestedStringTruncate
	if isRoot {
		limit = RootStringTruncate
	}
	show, wasTruncated := safeTruncate(b, limit)

	if utf8.Valid(show) {
		fmt.Fprintf(&p.buf, "%q", string(show))
	} else {
		p.buf.WriteString(`b"`)
		for _, c := range show {
			if c >= 0x20 && c < 0x7f && c != '"' && c != '\\' {
				p.buf.WriteByte(c)
			} else {
				fmt.Fprintf(&p.buf, `\x%02x`, c)
			}
		}
		p.buf.WriteByte('"')
	}
	if wasTruncated {
		p.buf.WriteString("...")
	}
}

// safeTruncate cuts b to at most limit bytes, backing off to the nearest
// earlier rune boundary so a multi-byte UTF-8 sequence is never split.
func safeTruncate(b []byte, limit int) ([]byte, bool) {
	if len(b) <= limit {
		return b, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return b[:cut], true
}
