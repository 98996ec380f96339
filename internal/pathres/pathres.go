// Package pathres turns user-supplied paths into the form a clipboard
// backend expects.
package pathres

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/logging"
)

// Resolver maps a local path to the path handed to the clipboard.
type Resolver interface {
	Resolve(path string) (string, error)
}

// New returns the resolver matching a clipboard backend name: WSL for the
// wsl backend, Canonical for everything else.
func New(backend string, log *slog.Logger) Resolver {
	log = logging.OrDiscard(log).With("component", "pathres")
	if backend == clip.BackendWSL {
		return &WSL{Program: "wslpath", Log: log}
	}
	return Canonical{}
}

// Canonical resolves to an absolute path with symlinks evaluated. The path
// must exist.
type Canonical struct{}

func (Canonical) Resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	return resolved, nil
}

// WSL canonicalizes the path and converts it with `wslpath -w` into a
// Windows path Windows programs can open.
type WSL struct {
	// Program is the wslpath executable.
	Program string
	Log     *slog.Logger
}

func (w *WSL) Resolve(path string) (string, error) {
	log := logging.OrDiscard(w.Log)
	abs, err := Canonical{}.Resolve(path)
	if err != nil {
		return "", err
	}
	log.Debug("canonicalized path", "path", abs)

	cmd := exec.Command(w.Program, "-w", abs)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		log.Error("wslpath failed", "path", abs, "stderr", msg)
		return "", &clip.ExitError{Program: w.Program, Err: err, Stderr: msg}
	}
	if !utf8.Valid(out) {
		return "", errors.New("wslpath returned invalid UTF-8")
	}
	win := strings.TrimSpace(string(out))
	log.Debug("windows path", "path", win)
	return win, nil
}

// ResolveAll resolves every path in order, stopping at the first failure.
func ResolveAll(r Resolver, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rp, err := r.Resolve(p)
		if err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, nil
}
