// Package batch implements the original's batch.rs transform-script
// mode: a small textual script of one editing operation per line,
// applied in order to every file named on the command line. Unlike the
// interactive REPL, a batch run never aborts on the first bad file — it
// records a per-file Result and keeps going (see driver.go).
package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/omkarkirpan/bencedit/repl"
)

// OpKind names one of the five mutation primitives a script line can
// invoke.
type OpKind int

const (
	OpSet OpKind = iota
	OpInsert
	OpAppend
	OpRemove
	OpClear
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpInsert:
		return "insert"
	case OpAppend:
		return "append"
	case OpRemove:
		return "remove"
	case OpClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Op is one parsed script line: an operation, the selector it targets,
// and the operands it needs (Key for insert, Literal for set/insert/
// append).
type Op struct {
	Kind     OpKind
	Selector string
	Key      string // insert only; numeric means list index, else dict key
	Literal  string // set/insert/append only
	Line     int    // 1-based source line, for error messages
}

// ParseScript parses a batch script: one operation per line, blank lines
// and lines starting with '#' ignored, fields tokenized the same
// quote-aware way the REPL tokenizes command lines (so a literal
// containing spaces can be written as one quoted field).
func ParseScript(data []byte) ([]Op, error) {
	var ops []Op
	lines := strings.Split(string(data), "\n")
	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields, err := repl.Tokenize(trimmed)
		if err != nil {
			return nil, fmt.Errorf("batch: line %d: %w", lineNo, err)
		}
		op, err := parseOp(fields, lineNo)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseOp(fields []string, lineNo int) (Op, error) {
	if len(fields) == 0 {
		return Op{}, fmt.Errorf("batch: line %d: empty operation", lineNo)
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "set":
		if len(args) != 2 {
			return Op{}, fmt.Errorf("batch: line %d: usage: set <selector> <literal>", lineNo)
		}
		return Op{Kind: OpSet, Selector: args[0], Literal: args[1], Line: lineNo}, nil

	case "insert":
		if len(args) != 3 {
			return Op{}, fmt.Errorf("batch: line %d: usage: insert <selector> <key-or-index> <literal>", lineNo)
		}
		return Op{Kind: OpInsert, Selector: args[0], Key: args[1], Literal: args[2], Line: lineNo}, nil

	case "append":
		if len(args) != 2 {
			return Op{}, fmt.Errorf("batch: line %d: usage: append <selector> <literal>", lineNo)
		}
		return Op{Kind: OpAppend, Selector: args[0], Literal: args[1], Line: lineNo}, nil

	case "remove":
		if len(args) != 1 {
			return Op{}, fmt.Errorf("batch: line %d: usage: remove <selector>", lineNo)
		}
		return Op{Kind: OpRemove, Selector: args[0], Line: lineNo}, nil

	case "clear":
		if len(args) != 1 {
			return Op{}, fmt.Errorf("batch: line %d: usage: clear <selector>", lineNo)
		}
		return Op{Kind: OpClear, Selector: args[0], Line: lineNo}, nil

	default:
		return Op{}, fmt.Errorf("batch: line %d: unknown operation %q", lineNo, name)
	}
}

// isIndex reports whether key looks like a list index rather than a
// dict key, the same heuristic the REPL's insert command uses.
func isIndex(key string) (int, bool) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}
