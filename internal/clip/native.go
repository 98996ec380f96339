package clip

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// nativeSink writes through golang.design/x/clipboard. On X11 the content
// is served by this process, so it lasts only as long as the process does.
type nativeSink struct {
	log *slog.Logger
}

// newNative initialises the platform clipboard. clipboard.Init runs here
// rather than in init() so commands that never touch the clipboard don't
// fail on headless systems.
func newNative(log *slog.Logger) (*nativeSink, error) {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return nil, fmt.Errorf("native clipboard: %w", initErr)
	}
	return &nativeSink{log: log}, nil
}

func (s *nativeSink) Name() string { return BackendNative }

func (s *nativeSink) SendPaths(paths []string, kind Kind) error {
	if err := checkPaths(paths, kind); err != nil {
		return err
	}
	switch kind {
	case KindImage:
		data, err := PNGFromFile(paths[0])
		if err != nil {
			return err
		}
		clipboard.Write(clipboard.FmtImage, data)
	default:
		clipboard.Write(clipboard.FmtText, []byte(FileURIList(paths)))
	}
	LogDelivery(s.log, s.Name(), kind, paths)
	return nil
}

// OpenText buffers the stream; the clipboard API takes the whole payload in
// one write.
func (s *nativeSink) OpenText() (TextChannel, error) {
	var buf bytes.Buffer
	return newChannel(&buf, func() error {
		clipboard.Write(clipboard.FmtText, buf.Bytes())
		LogText(s.log, s.Name(), buf.Len(), buf.Bytes())
		return nil
	}), nil
}
