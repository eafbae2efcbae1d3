// Package repl implements the interactive editing loop: a liner-backed
// prompt that shows the current selector depth, quote-aware command
// tokenizing, and a small command language (get/set/insert/append/
// remove/clear/cd/save/load/quit) layered over editor.Session. The REPL
// itself is out of spec.md's scope (§1); it exists only to drive the
// engine the way spec.md's collaborator contract (§6.3) describes.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/omkarkirpan/bencedit/display"
	"github.com/omkarkirpan/bencedit/editor"
	"github.com/omkarkirpan/bencedit/literal"
)

// errQuit is the sentinel dispatch returns for "quit"/"exit" to unwind
// the Run loop without treating it as a command failure.
var errQuit = errors.New("repl: quit")

// Session drives one interactive editing loop over an editor.Session.
type Session struct {
	ed          *editor.Session
	cur         string // current selector prefix, set by :cd
	line        *liner.State
	log         *zap.SugaredLogger
	historyPath string
	out         io.Writer
}

// NewSession wires a liner.State to ed. historyPath may be empty, in
// which case command history is not persisted across runs.
func NewSession(ed *editor.Session, historyPath string, log *zap.SugaredLogger) *Session {
	return &Session{
		ed:          ed,
		line:        liner.NewLiner(),
		log:         log,
		historyPath: historyPath,
		out:         os.Stdout,
	}
}

// Run reads commands until EOF, Ctrl-D, or a quit/exit command.
func (s *Session) Run() error {
	defer s.line.Close()
	s.line.SetCtrlCAborts(true)

	if s.historyPath != "" {
		if f, err := os.Open(s.historyPath); err == nil {
			if _, err := s.line.ReadHistory(f); err != nil {
				s.log.Debugw("failed to read history", "path", s.historyPath, "error", err)
			}
			f.Close()
		}
	}

	for {
		prompt := s.cur
		if prompt == "" {
			prompt = "<root>"
		}
		raw, err := s.line.Prompt(prompt + "> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			break
		}
		if err != nil {
			return fmt.Errorf("repl: reading input: %w", err)
		}

		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		s.line.AppendHistory(trimmed)

		if err := s.dispatch(trimmed); err != nil {
			if errors.Is(err, errQuit) {
				break
			}
			fmt.Fprintf(s.out, "error: %v\n", err)
			s.log.Debugw("command failed", "line", trimmed, "error", err)
		}
	}

	if s.historyPath != "" {
		if f, err := os.Create(s.historyPath); err == nil {
			if _, err := s.line.WriteHistory(f); err != nil {
				s.log.Debugw("failed to write history", "path", s.historyPath, "error", err)
			}
			f.Close()
		}
	}
	return nil
}

// resolve joins a one-shot selector argument onto the current path: an
// empty argument means "the current path itself", otherwise the argument
// is appended (so `cd .info` then `get .name` addresses `.info.name`).
func (s *Session) resolve(arg string) string {
	if arg == "" {
		return s.cur
	}
	return s.cur + arg
}

func (s *Session) dispatch(line string) error {
	tokens, err := Tokenize(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := tokens[0], tokens[1:]

	switch cmd {
	case "quit", "exit":
		return errQuit

	case "help":
		fmt.Fprint(s.out, helpText)
		return nil

	case "cd":
		return s.cmdCd(args)

	case "get", "show":
		return s.cmdGet(args)

	case "set":
		return s.cmdSet(args)

	case "insert":
		return s.cmdInsert(args)

	case "append":
		return s.cmdAppend(args)

	case "remove", "rm":
		return s.cmdRemove(args)

	case "clear":
		return s.cmdClear(args)

	case "save":
		return s.cmdSave(args)

	case "load":
		return s.cmdLoad(args)

	default:
		return fmt.Errorf("unknown command %q (try \"help\")", cmd)
	}
}

const helpText = `commands:
  get [selector]              show the value at selector (default: current path)
  set <selector> <literal>    replace the value at selector
  insert <selector> <key-or-index> <literal>
                              insert into the dict/list at selector
  append <selector> <literal> push onto the list at selector
  remove <selector>           delete the node at selector from its parent
  clear <selector>            reset the node at selector to its empty value
  cd [selector]               change the current path (cd with no args: root)
  save [path]                 write the tree back (default: the loaded path)
  load <path>                 discard the current tree and load another file
  quit / exit                 leave the editor
`

func (s *Session) cmdCd(args []string) error {
	if len(args) == 0 {
		s.cur = ""
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("cd takes at most one selector")
	}
	target := s.resolve(args[0])
	if _, err := s.ed.Select(target); err != nil {
		return err
	}
	s.cur = target
	return nil
}

func (s *Session) cmdGet(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("get takes at most one selector")
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	target := s.resolve(arg)
	v, err := s.ed.Select(target)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, display.Render(*v))
	return nil
}

func (s *Session) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <selector> <literal>")
	}
	v, err := literal.Parse(args[1])
	if err != nil {
		return err
	}
	target := s.resolve(args[0])
	changed, err := s.ed.Set(target, v)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintln(s.out, "updated")
		s.log.Debugw("set", "selector", target, "hash", s.ed.Hash())
	} else {
		fmt.Fprintln(s.out, "unchanged")
	}
	return nil
}

func (s *Session) cmdInsert(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: insert <selector> <key-or-index> <literal>")
	}
	v, err := literal.Parse(args[2])
	if err != nil {
		return err
	}
	target := s.resolve(args[0])
	if idx, err := strconv.Atoi(args[1]); err == nil {
		if err := s.ed.InsertIndex(target, idx, v); err != nil {
			return err
		}
	} else {
		if err := s.ed.InsertKey(target, []byte(args[1]), v); err != nil {
			return err
		}
	}
	s.log.Debugw("insert", "selector", target, "key", args[1])
	fmt.Fprintln(s.out, "updated")
	return nil
}

func (s *Session) cmdAppend(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: append <selector> <literal>")
	}
	v, err := literal.Parse(args[1])
	if err != nil {
		return err
	}
	target := s.resolve(args[0])
	if err := s.ed.Append(target, v); err != nil {
		return err
	}
	s.log.Debugw("append", "selector", target)
	fmt.Fprintln(s.out, "updated")
	return nil
}

func (s *Session) cmdRemove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <selector>")
	}
	target := s.resolve(args[0])
	if err := s.ed.Remove(target); err != nil {
		return err
	}
	s.log.Debugw("remove", "selector", target)
	fmt.Fprintln(s.out, "removed")
	return nil
}

func (s *Session) cmdClear(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clear <selector>")
	}
	target := s.resolve(args[0])
	if err := s.ed.Clear(target); err != nil {
		return err
	}
	s.log.Debugw("clear", "selector", target)
	fmt.Fprintln(s.out, "cleared")
	return nil
}

func (s *Session) cmdSave(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("usage: save [path]")
	}
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if err := s.ed.Save(path); err != nil {
		return err
	}
	s.log.Infow("saved", "path", s.ed.Path)
	fmt.Fprintf(s.out, "saved to %s\n", s.ed.Path)
	return nil
}

func (s *Session) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <path>")
	}
	loaded, err := editor.Load(args[0])
	if err != nil {
		return err
	}
	*s.ed = *loaded
	s.cur = ""
	s.log.Infow("loaded", "path", args[0])
	fmt.Fprintf(s.out, "loaded %s\n", args[0])
	return nil
}
