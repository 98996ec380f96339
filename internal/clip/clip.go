// Package clip delivers content to the system clipboard. A Sink accepts
// either a list of resolved paths (one image, or many file objects) or a
// streamed block of text. The backend is selected by name:
//
//	wsl      powershell.exe for images and file drop lists, clip.exe for text
//	native   golang.design/x/clipboard
//	command  github.com/atotto/clipboard (xclip, xsel, wl-copy, pbcopy)
//	auto     wsl under WSL, otherwise command (native for images when no
//	         xclip or wl-copy is installed)
package clip

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.klb.dev/smartclip/internal/logging"
)

// Backend names accepted by New.
const (
	BackendAuto    = "auto"
	BackendWSL     = "wsl"
	BackendNative  = "native"
	BackendCommand = "command"
)

// Backends lists the names accepted by New, in help order.
var Backends = []string{BackendAuto, BackendWSL, BackendNative, BackendCommand}

var (
	// ErrImageCount is returned when an image delivery is not exactly one path.
	ErrImageCount = errors.New("image mode supports exactly one file at a time")
	// ErrChannelFinished is returned by a TextChannel used after Finish.
	ErrChannelFinished = errors.New("text channel already finished")
	// ErrUnsupported is returned when a backend cannot produce a representation.
	ErrUnsupported = errors.New("not supported by this clipboard backend")
)

// Kind selects the clipboard representation for a path delivery.
type Kind int

const (
	KindImage Kind = iota
	KindFiles
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindFiles:
		return "files"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sink is the interface every clipboard backend satisfies.
type Sink interface {
	// Name returns the backend name.
	Name() string

	// SendPaths places paths on the clipboard as an image (KindImage, exactly
	// one path) or as a file-object list (KindFiles). Paths must already be in
	// the form the backend expects; see pathres.
	SendPaths(paths []string, kind Kind) error

	// OpenText starts a text delivery. The returned channel must be finished
	// exactly once.
	OpenText() (TextChannel, error)
}

// TextChannel is an open text delivery. Content written to it becomes the
// clipboard text once Finish returns nil.
type TextChannel interface {
	io.Writer
	// Finish commits the text and releases the channel. Calling it again,
	// or writing afterwards, returns ErrChannelFinished.
	Finish() error
}

// ExitError reports a clipboard helper program that failed.
type ExitError struct {
	Program string
	Err     error
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Program, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Program, e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// New returns the backend registered under name. The logger may be nil.
func New(name string, log *slog.Logger) (Sink, error) {
	log = logging.OrDiscard(log).With("component", "clip")
	switch name {
	case BackendWSL:
		return newWSL(log), nil
	case BackendNative:
		return newNative(log)
	case BackendCommand:
		return newCommand(log)
	case BackendAuto, "":
		return newAuto(log)
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q (want one of %s)", name, strings.Join(Backends, ", "))
	}
}

func newAuto(log *slog.Logger) (Sink, error) {
	if IsWSL() {
		log.Debug("WSL detected, using Windows clipboard helpers")
		return newWSL(log), nil
	}
	command, cerr := newCommand(log)
	return pickAuto(command, cerr, func() (Sink, error) { return newNative(log) }, log)
}

// pickAuto chooses the non-WSL backend. A command backend with an image tool
// handles everything, and its helpers keep serving after exit. Otherwise the
// native backend takes images; on X11 those last only while this process runs.
func pickAuto(command *commandSink, cerr error, native func() (Sink, error), log *slog.Logger) (Sink, error) {
	if cerr == nil && command.imageTool != nil {
		return command, nil
	}
	n, nerr := native()
	switch {
	case nerr == nil && cerr == nil:
		return &splitSink{images: n, rest: command}, nil
	case nerr == nil:
		log.Debug("clipboard command unavailable, using native backend only", "err", cerr)
		return n, nil
	case cerr == nil:
		log.Warn("native clipboard unavailable, images cannot be copied", "err", nerr)
		return command, nil
	default:
		return nil, fmt.Errorf("no clipboard backend available: %w", errors.Join(nerr, cerr))
	}
}

// IsWSL reports whether the process runs under Windows Subsystem for Linux.
func IsWSL() bool {
	return isWSL(os.Getenv, "/proc/version")
}

func isWSL(getenv func(string) string, procVersion string) bool {
	if getenv("WSL_DISTRO_NAME") != "" || getenv("WSL_INTEROP") != "" {
		return true
	}
	b, err := os.ReadFile(procVersion)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(b)), "microsoft")
}

func checkPaths(paths []string, kind Kind) error {
	switch kind {
	case KindImage:
		if len(paths) != 1 {
			return ErrImageCount
		}
	case KindFiles:
		if len(paths) == 0 {
			return errors.New("no files to copy")
		}
	default:
		return fmt.Errorf("send paths as %s: %w", kind, ErrUnsupported)
	}
	return nil
}

// splitSink sends images to one backend and everything else to another.
type splitSink struct {
	images Sink
	rest   Sink
}

func (s *splitSink) Name() string { return s.images.Name() + "+" + s.rest.Name() }

func (s *splitSink) SendPaths(paths []string, kind Kind) error {
	if kind == KindImage {
		return s.images.SendPaths(paths, kind)
	}
	return s.rest.SendPaths(paths, kind)
}

func (s *splitSink) OpenText() (TextChannel, error) { return s.rest.OpenText() }
