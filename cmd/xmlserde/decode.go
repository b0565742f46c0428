package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/corvantis/xmlserde/xmldyn"
)

var watchInput bool

var decodeCmd = &cobra.Command{
	Use:   "decode <pattern...>",
	Short: "Decode one or more XML documents into their dynamic (JSON-shaped) form",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandGlobs(args)
		if err != nil {
			return err
		}
		if err := decodeFiles(files); err != nil {
			return err
		}
		if !watchInput {
			return nil
		}
		return watchAndRerun(files, func() error { return decodeFiles(files) })
	},
}

func init() {
	decodeCmd.Flags().BoolVar(&watchInput, "watch", false, "re-run whenever an input file changes")
}

// expandGlobs resolves each pattern through doublestar's "**" support
// (plain paths pass through unchanged, since a non-matching literal path
// is also a valid single-file "pattern").
func expandGlobs(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", p, err)
		}
		if len(matches) == 0 {
			matches = []string{p}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func decodeFiles(files []string) error {
	start := time.Now()
	var totalBytes int64
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		totalBytes += int64(len(data))
		v, err := xmldyn.ParseBytes(data)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		if err := printValue(v.Map()); err != nil {
			return err
		}
	}
	logger.Info("decode complete",
		"files", len(files),
		"bytes", humanize.Bytes(uint64(totalBytes)),
		"elapsed", humanize.RelTime(start, time.Now(), "", ""))
	return nil
}

func printValue(v any) error {
	if debugOutput {
		pretty.Println(v)
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// watchAndRerun re-invokes run every time one of files is written or
// created, until the watcher's event or error channel is closed. Watch
// errors and failed reruns are logged and watching continues.
func watchAndRerun(files []string, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for _, f := range files {
		if err := w.Add(f); err != nil {
			return err
		}
	}
	logger.Info("watching for changes", "files", files)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := run(); err != nil {
				logger.Error("rerun failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "err", err)
		}
	}
}
