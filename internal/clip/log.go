package clip

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

const previewLen = 120

// LogDelivery logs a path delivery at INFO (backend, kind, count) and each
// path at DEBUG.
func LogDelivery(log *slog.Logger, backend string, kind Kind, paths []string) {
	log.Info("clipboard updated", "backend", backend, "kind", kind.String(), "count", len(paths))
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, p := range paths {
		log.Debug("clipboard item", "kind", kind.String(), "path", p)
	}
}

// LogText logs a text delivery at INFO (backend, size) and, when preview is
// available, at most its first 120 bytes at DEBUG, cut on a rune boundary.
func LogText(log *slog.Logger, backend string, size int, preview []byte) {
	log.Info("clipboard updated", "backend", backend, "kind", KindText.String(), "size_bytes", size)
	if preview == nil || !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	s := string(preview)
	if len(s) > previewLen {
		cut := previewLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	log.Debug("clipboard item", "kind", KindText.String(), "preview", s)
}
