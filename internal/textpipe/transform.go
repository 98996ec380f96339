package textpipe

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// ansiCSI matches SGR and erase-in-line sequences: ESC [ params m|K, where
// params are 1-2 digit numbers separated by semicolons.
var ansiCSI = regexp.MustCompile(`\x1b\[(?:[0-9]{1,2}(?:;[0-9]{1,2})*)?[mK]`)

// Options controls text framing and sanitizing for one pipeline run.
type Options struct {
	// SuppressHeader drops per-file headers, blank separators and the footer.
	SuppressHeader bool
	// StripANSI removes ANSI colour/erase sequences and then every remaining
	// control character except TAB.
	StripANSI bool
	// MarkdownFence wraps each file in a code fence tagged with its extension.
	MarkdownFence bool
	// CRLF terminates every emitted line with \r\n instead of \n.
	CRLF bool
}

// Terminator returns the line terminator selected by opts.
func Terminator(opts Options) string {
	if opts.CRLF {
		return "\r\n"
	}
	return "\n"
}

// Transform returns line with the per-line filters applied. line must not
// contain its terminator. The input slice is never modified.
func Transform(line []byte, opts Options) []byte {
	if !opts.StripANSI {
		return line
	}
	return Sanitize(StripANSI(line))
}

// StripANSI removes ANSI CSI colour and erase-in-line sequences.
func StripANSI(line []byte) []byte {
	return ansiCSI.ReplaceAll(line, nil)
}

// Sanitize removes control characters (C0, DEL and C1) except horizontal
// tab. Bytes that are not valid UTF-8 are kept unless they fall in 0x80-0x9F,
// where an 8-bit terminal would read them as C1 controls. Sanitize is
// idempotent.
func Sanitize(line []byte) []byte {
	out := make([]byte, 0, len(line))
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRune(line[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			if b := line[i]; b < 0x80 || b > 0x9f {
				out = append(out, b)
			}
		case r == '\t' || !unicode.IsControl(r):
			out = append(out, line[i:i+size]...)
		}
		i += size
	}
	return out
}
