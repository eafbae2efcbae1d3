// Command bencedit is the CLI front-end over the editor/repl/batch
// packages: `edit` opens a file in the interactive prompt, `batch` runs
// a transform script over many files, `dump` decodes and prints a
// file's tree (or a torrent-aware summary of it).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omkarkirpan/bencedit/batch"
	"github.com/omkarkirpan/bencedit/bencode"
	"github.com/omkarkirpan/bencedit/display"
	"github.com/omkarkirpan/bencedit/editor"
	"github.com/omkarkirpan/bencedit/repl"
	"github.com/omkarkirpan/bencedit/torrent"
)

var verbose bool

func newLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap itself failed to construct; fall back to a logger that
		// discards everything rather than crash a CLI over tracing.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

func main() {
	root := &cobra.Command{
		Use:           "bencedit",
		Short:         "Interactively edit Bencode (BitTorrent metainfo) files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose decode/mutation tracing")

	root.AddCommand(newEditCmd(), newBatchCmd(), newDumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bencedit:", err)
		os.Exit(1)
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bencedit_history")
}

func newEditCmd() *cobra.Command {
	var historyPath string
	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "open a file in the interactive editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync() //nolint:errcheck

			sess, err := editor.Load(args[0])
			if err != nil {
				return err
			}
			log.Infow("loaded", "path", args[0])

			rs := repl.NewSession(sess, historyPath, log)
			return rs.Run()
		},
	}
	cmd.Flags().StringVar(&historyPath, "history", defaultHistoryPath(), "command history file (empty disables persistence)")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var scriptPath string
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "apply a transform script to one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync() //nolint:errcheck

			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}
			ops, err := batch.ParseScript(data)
			if err != nil {
				return err
			}
			log.Infow("batch starting", "ops", len(ops), "files", len(args))

			results := batch.Run(ops, args)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					log.Errorw("batch failed", "path", r.Path, "error", r.Err)
					fmt.Fprintf(os.Stderr, "%s: %v\n", r.Path, r.Err)
					continue
				}
				log.Infow("batch ok", "path", r.Path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scriptPath, "script", "", "path to the transform script")
	cmd.MarkFlagRequired("script") //nolint:errcheck
	return cmd
}

func newDumpCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "decode a file and print its tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			v, err := bencode.LoadBytes(data)
			if err != nil {
				return err
			}
			if !summary {
				fmt.Println(display.Render(v))
				return nil
			}
			return printSummary(v)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print a torrent-file summary instead of the raw tree")
	return cmd
}

func printSummary(v bencode.Value) error {
	s, err := torrent.Summarize(v)
	if err != nil {
		return err
	}
	hash, err := torrent.InfoHash(v)
	if err != nil {
		return err
	}
	fmt.Printf("name:       %s\n", s.Name)
	fmt.Printf("announce:   %s\n", s.Announce)
	fmt.Printf("info hash:  %x\n", hash)
	fmt.Printf("piece len:  %d\n", s.PieceLength)
	fmt.Printf("pieces:     %d\n", s.NumPieces())
	fmt.Printf("total size: %d\n", s.TotalLength())
	if len(s.Files) > 0 {
		fmt.Printf("files:      %d\n", len(s.Files))
		for _, f := range s.Files {
			fmt.Printf("  %s (%d bytes)\n", filepath.Join(f.Path...), f.Length)
		}
	}
	return nil
}
