// Package textpipe streams text from files or standard input into a writer,
// line by line, applying the sanitizing and framing options.
//
// Output format for file-list mode (headers on, fencing on, two files):
//
//	# FILE: a.py READ: 2025-11-25T17:17:02Z
//	```py
//	...lines of a.py...
//	```
//
//	# FILE: b.go READ: 2025-11-25T17:17:02Z
//	```go
//	...lines of b.go...
//	```
//
//	# End of FILES. SENT: a.py b.go
//
// Every emitted line ends with the configured terminator.
package textpipe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"go.klb.dev/smartclip/internal/classify"
	"go.klb.dev/smartclip/internal/logging"
)

// ErrNoInput is returned when there are no paths and stdin is an
// interactive terminal (nothing was piped in).
var ErrNoInput = errors.New("no input provided: pipe data or specify files")

// TimestampFormat is the UTC ISO-8601 layout used in file headers.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Source selects the pipeline input. A non-empty Paths means file-list mode;
// otherwise lines are read from Stdin.
type Source struct {
	Paths []string
	Stdin io.Reader
}

// Validate reports ErrNoInput when Source has no paths and stdin is missing
// or attached to a terminal.
func (s Source) Validate() error {
	if len(s.Paths) > 0 {
		return nil
	}
	if s.Stdin == nil || logging.IsTTY(s.Stdin) {
		return ErrNoInput
	}
	return nil
}

// Pipeline holds the immutable settings for text runs. It keeps no state
// between Stream calls.
type Pipeline struct {
	Options Options
	Log     *slog.Logger
	// Now stamps file headers; defaults to time.Now.
	Now func() time.Time
}

// Stream writes the processed content of src to w. Each line is read,
// transformed and written before the next one is read; w is not buffered.
func (p *Pipeline) Stream(w io.Writer, src Source) error {
	if err := src.Validate(); err != nil {
		return err
	}
	log := logging.OrDiscard(p.Log).With("component", "textpipe")
	if len(src.Paths) > 0 {
		return p.streamFiles(w, src.Paths, log)
	}
	log.Debug("reading stdin")
	if err := p.copyLines(w, src.Stdin); err != nil {
		return fmt.Errorf("stdin: %w", err)
	}
	return nil
}

func (p *Pipeline) streamFiles(w io.Writer, paths []string, log *slog.Logger) error {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	stamp := now().UTC().Format(TimestampFormat)
	opts := p.Options
	lw := lineWriter{w: w, term: Terminator(opts)}

	log.Debug("streaming files", "count", len(sorted))

	var sent []string
	for _, path := range sorted {
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			log.Warn("skipped invalid file", "path", path, "err", err)
			continue
		}
		sent = append(sent, path)

		if !opts.SuppressHeader {
			if err := lw.line("# FILE: " + path + " READ: " + stamp); err != nil {
				return err
			}
		}
		if opts.MarkdownFence {
			if err := lw.line("```" + classify.Extension(path)); err != nil {
				return err
			}
		}
		if err := p.streamFile(w, path); err != nil {
			return err
		}
		if opts.MarkdownFence {
			if err := lw.line("```"); err != nil {
				return err
			}
		}
		if !opts.SuppressHeader {
			if err := lw.line(""); err != nil {
				return err
			}
		}
	}

	if !opts.SuppressHeader && len(sorted) > 1 {
		if err := lw.line("# End of FILES. SENT: " + strings.Join(sent, " ")); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) streamFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()
	if err := p.copyLines(w, f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// copyLines moves r to w one line at a time. There is no line-length limit;
// a final line without a terminator is still emitted.
func (p *Pipeline) copyLines(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	term := []byte(Terminator(p.Options))
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if n := len(line); line[n-1] == '\n' {
				line = bytes.TrimSuffix(line[:n-1], []byte("\r"))
			}
			out := append(Transform(line, p.Options), term...)
			if _, werr := w.Write(out); werr != nil {
				return fmt.Errorf("write: %w", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type lineWriter struct {
	w    io.Writer
	term string
}

func (l lineWriter) line(s string) error {
	if _, err := io.WriteString(l.w, s+l.term); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
