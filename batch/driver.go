package batch

import (
	"fmt"

	"github.com/omkarkirpan/bencedit/editor"
	"github.com/omkarkirpan/bencedit/literal"
)

// Result is the outcome of applying a script to one file.
type Result struct {
	Path string
	Err  error
}

// Run applies ops, in order, to every file in paths. Each file is
// loaded, mutated, and saved back independently: a failure on one file
// (bad Bencode, a selector that doesn't resolve, an I/O error) is
// recorded in that file's Result and does not stop the run, matching
// the original's per-file reporting rather than all-or-nothing batch
// semantics.
func Run(ops []Op, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, Result{Path: path, Err: applyToFile(ops, path)})
	}
	return results
}

func applyToFile(ops []Op, path string) error {
	sess, err := editor.Load(path)
	if err != nil {
		return err
	}
	for _, op := range ops {
		if err := apply(sess, op); err != nil {
			return fmt.Errorf("line %d (%s %s): %w", op.Line, op.Kind, op.Selector, err)
		}
	}
	if !sess.Dirty {
		return nil
	}
	return sess.Save("")
}

func apply(sess *editor.Session, op Op) error {
	switch op.Kind {
	case OpSet:
		v, err := literal.Parse(op.Literal)
		if err != nil {
			return err
		}
		_, err = sess.Set(op.Selector, v)
		return err

	case OpInsert:
		v, err := literal.Parse(op.Literal)
		if err != nil {
			return err
		}
		if idx, ok := isIndex(op.Key); ok {
			return sess.InsertIndex(op.Selector, idx, v)
		}
		return sess.InsertKey(op.Selector, []byte(op.Key), v)

	case OpAppend:
		v, err := literal.Parse(op.Literal)
		if err != nil {
			return err
		}
		return sess.Append(op.Selector, v)

	case OpRemove:
		return sess.Remove(op.Selector)

	case OpClear:
		return sess.Clear(op.Selector)

	default:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	}
}
