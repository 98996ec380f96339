package clip

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// powershell.exe folds every argument after -Command into the script text,
// so the script goes base64 UTF-16LE via -EncodedCommand and the paths go
// NUL-separated on stdin. Neither is ever parsed as PowerShell.
const (
	psAssemblies = "Add-Type -AssemblyName System.Windows.Forms; Add-Type -AssemblyName System.Drawing;"
	psReadPaths  = "$reader = New-Object System.IO.StreamReader([Console]::OpenStandardInput(), (New-Object System.Text.UTF8Encoding $false)); " +
		"$paths = $reader.ReadToEnd().Split([char[]]@([char]0), [System.StringSplitOptions]::RemoveEmptyEntries);"
	psImageBody = "$img = [System.Drawing.Image]::FromFile($paths[0]); [System.Windows.Forms.Clipboard]::SetImage($img);"
	psFilesBody = "$files = New-Object System.Collections.Specialized.StringCollection; " +
		"foreach ($p in $paths) { [void]$files.Add($p) }; " +
		"[System.Windows.Forms.Clipboard]::SetFileDropList($files);"
)

type wslSink struct {
	powershell string
	clipExe    string
	log        *slog.Logger
}

func newWSL(log *slog.Logger) *wslSink {
	return &wslSink{powershell: "powershell.exe", clipExe: "clip.exe", log: log}
}

func (s *wslSink) Name() string { return BackendWSL }

// psScript returns the PowerShell source for kind.
func psScript(kind Kind) string {
	body := psFilesBody
	if kind == KindImage {
		body = psImageBody
	}
	return psAssemblies + " " + psReadPaths + " " + body
}

// encodeCommand renders script in the -EncodedCommand form.
func encodeCommand(script string) (string, error) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(script)
	if err != nil {
		return "", fmt.Errorf("encode powershell script: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(utf16)), nil
}

func (s *wslSink) SendPaths(paths []string, kind Kind) error {
	if err := checkPaths(paths, kind); err != nil {
		return err
	}
	encoded, err := encodeCommand(psScript(kind))
	if err != nil {
		return err
	}
	s.log.Debug("running powershell clipboard script", "kind", kind.String(), "count", len(paths))

	cmd := exec.Command(s.powershell, "-NoProfile", "-NonInteractive", "-Sta", "-EncodedCommand", encoded)
	cmd.Stdin = strings.NewReader(strings.Join(paths, "\x00"))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &ExitError{Program: s.powershell, Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	LogDelivery(s.log, s.Name(), kind, paths)
	return nil
}

// OpenText spawns clip.exe and streams into its stdin. Finish closes the
// pipe and waits for the process.
func (s *wslSink) OpenText() (TextChannel, error) {
	cmd := exec.Command(s.clipExe)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%s: stdin: %w", s.clipExe, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, &ExitError{Program: s.clipExe, Err: err}
	}
	s.log.Debug("spawned clipboard text stream", "program", s.clipExe, "pid", cmd.Process.Pid)

	var ch *channel
	ch = newChannel(stdin, func() error {
		cerr := stdin.Close()
		if err := cmd.Wait(); err != nil {
			return &ExitError{Program: s.clipExe, Err: err, Stderr: strings.TrimSpace(stderr.String())}
		}
		if cerr != nil {
			return fmt.Errorf("%s: close stdin: %w", s.clipExe, cerr)
		}
		LogText(s.log, s.Name(), ch.n, nil)
		return nil
	})
	return ch, nil
}
