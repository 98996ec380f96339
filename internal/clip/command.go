package clip

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
)

// commandSink shells out to the platform clipboard tool via atotto/clipboard.
// File objects go as a URI list. Images need xclip or wl-copy, which atotto
// does not drive, and are refused without one.
type commandSink struct {
	log   *slog.Logger
	write func(string) error
	// imageTool is the argv that reads a PNG on stdin, nil when none exists.
	imageTool []string
}

func newCommand(log *slog.Logger) (*commandSink, error) {
	if clipboard.Unsupported {
		return nil, errors.New("command clipboard: no xclip, xsel, wl-copy or pbcopy found")
	}
	return &commandSink{
		log:       log,
		write:     clipboard.WriteAll,
		imageTool: findImageTool(runtime.GOOS, os.Getenv, exec.LookPath),
	}, nil
}

// findImageTool picks the helper that can own an image/png selection after
// this process exits. macOS and Windows keep clipboard content themselves.
func findImageTool(goos string, getenv func(string) string, lookPath func(string) (string, error)) []string {
	if goos == "darwin" || goos == "windows" {
		return nil
	}
	if getenv("WAYLAND_DISPLAY") != "" {
		if p, err := lookPath("wl-copy"); err == nil {
			return []string{p, "--type", "image/png"}
		}
	}
	if p, err := lookPath("xclip"); err == nil {
		return []string{p, "-selection", "clipboard", "-t", "image/png", "-i"}
	}
	return nil
}

func (s *commandSink) Name() string { return BackendCommand }

func (s *commandSink) SendPaths(paths []string, kind Kind) error {
	if err := checkPaths(paths, kind); err != nil {
		return err
	}
	if kind == KindImage {
		if err := s.copyImage(paths[0]); err != nil {
			return err
		}
	} else if err := s.write(FileURIList(paths)); err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	LogDelivery(s.log, s.Name(), kind, paths)
	return nil
}

func (s *commandSink) copyImage(path string) error {
	if s.imageTool == nil {
		return fmt.Errorf("%s: copy image: %w", s.Name(), ErrUnsupported)
	}
	data, err := PNGFromFile(path)
	if err != nil {
		return err
	}
	cmd := exec.Command(s.imageTool[0], s.imageTool[1:]...)
	cmd.Stdin = bytes.NewReader(data)
	// stdout and stderr stay unattached: the forked selection server would
	// otherwise hold the pipes open and Run would never return.
	if err := cmd.Run(); err != nil {
		return &ExitError{Program: s.imageTool[0], Err: err}
	}
	return nil
}

func (s *commandSink) OpenText() (TextChannel, error) {
	var buf bytes.Buffer
	return newChannel(&buf, func() error {
		if err := s.write(buf.String()); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
		LogText(s.log, s.Name(), buf.Len(), buf.Bytes())
		return nil
	}), nil
}
