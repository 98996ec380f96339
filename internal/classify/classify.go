// Package classify decides how a single input file should reach the
// clipboard: as a bitmap image, as a file object, or as text.
//
// The decision runs in strict precedence order:
//
//  1. extension override (no I/O)
//  2. magic-byte sniffing of the first SniffLen bytes
//  3. NUL-byte binary heuristic on the same prefix
//  4. text
package classify

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.klb.dev/smartclip/internal/logging"
)

// SniffLen is the number of leading bytes read for content sniffing.
const SniffLen = 262

// Verdict is the classifier's output for one input path.
type Verdict int

const (
	Text Verdict = iota
	Image
	FileObject
)

func (v Verdict) String() string {
	switch v {
	case Image:
		return "image"
	case FileObject:
		return "file"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// ExtensionOverrides are lower-case extensions that always classify as
// FileObject, even when the content is technically text (svg, gcode, obj).
var ExtensionOverrides = map[string]struct{}{
	"dxf": {}, "obj": {}, "stl": {}, "ply": {}, "gcode": {},
	"svg": {}, "eps": {}, "ai": {}, "psd": {}, "pdf": {},
	"zip": {}, "7z": {}, "tar": {}, "gz": {}, "rar": {}, "iso": {},
	"dll": {}, "bin": {}, "exe": {}, "jar": {}, "class": {},
}

// Extension returns the text after the last dot of the base name. Names with
// no dot, or whose only dot is the leading one (".bashrc"), have none.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// IsOverride reports whether path's extension is in ExtensionOverrides.
func IsOverride(path string) bool {
	ext := Extension(path)
	if ext == "" {
		return false
	}
	_, ok := ExtensionOverrides[strings.ToLower(ext)]
	return ok
}

// Classifier holds no per-call state; one value may classify any number of
// paths, including concurrently.
type Classifier struct {
	matcher SignatureMatcher
	log     *slog.Logger
}

// New returns a Classifier. A nil matcher selects MimeMatcher; a nil logger
// discards.
func New(matcher SignatureMatcher, log *slog.Logger) *Classifier {
	if matcher == nil {
		matcher = MimeMatcher{}
	}
	return &Classifier{
		matcher: matcher,
		log:     logging.OrDiscard(log).With("component", "classifier"),
	}
}

// Classify returns the verdict for path. Failing to open or read the file is
// an error, never a Text verdict.
func (c *Classifier) Classify(path string) (Verdict, error) {
	if IsOverride(path) {
		c.log.Debug("extension override", "path", path)
		return FileObject, nil
	}

	prefix, err := readPrefix(path)
	if err != nil {
		return Text, err
	}

	switch {
	case c.matcher.IsImage(prefix):
		c.log.Debug("image signature", "path", path)
		return Image, nil
	case c.matcher.IsBinaryContainer(prefix):
		c.log.Debug("binary signature", "path", path)
		return FileObject, nil
	case bytes.IndexByte(prefix, 0) >= 0:
		c.log.Debug("NUL bytes in prefix", "path", path)
		return FileObject, nil
	}
	c.log.Debug("text", "path", path, "sniffed", len(prefix))
	return Text, nil
}

// ClassifyAll classifies every path in order and stops at the first error.
func (c *Classifier) ClassifyAll(paths []string) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(paths))
	for _, p := range paths {
		v, err := c.Classify(p)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

func readPrefix(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("classify: open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, SniffLen)
	n, err := io.ReadFull(f, buf)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
		return buf[:n], nil
	default:
		return nil, fmt.Errorf("classify: read %s: %w", path, err)
	}
}
