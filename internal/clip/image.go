package clip

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	// Decoders for image files that are re-encoded as PNG.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// PNGFromFile returns the image at path encoded as PNG, the only bitmap
// format clipboard image writes accept. PNG files are returned unchanged.
func PNGFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if bytes.HasPrefix(data, pngMagic) {
		return data, nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode %s as png: %w", format, err)
	}
	return buf.Bytes(), nil
}

// FileURIList renders paths as a text/uri-list of file:// URIs.
func FileURIList(paths []string) string {
	uris := make([]string, len(paths))
	for i, p := range paths {
		p = filepath.ToSlash(p)
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		uris[i] = (&url.URL{Scheme: "file", Path: p}).String()
	}
	return strings.Join(uris, "\r\n")
}
