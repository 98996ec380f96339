package classify

import "github.com/gabriel-vasile/mimetype"

// SignatureMatcher inspects a content prefix for known magic numbers.
type SignatureMatcher interface {
	// IsImage reports whether prefix starts with a bitmap image signature.
	IsImage(prefix []byte) bool
	// IsBinaryContainer reports whether prefix starts with an archive,
	// executable/application, or document-container signature.
	IsBinaryContainer(prefix []byte) bool
}

// MimeMatcher is the default SignatureMatcher, backed by mimetype's detector
// tree. A detected type matches when it or any of its parents is listed.
type MimeMatcher struct{}

// rasterImages are the bitmap formats the clipboard sinks can load as
// pixels. Other image/* types (svg, xpm, dwg) are text or drawings.
var rasterImages = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/bmp",
	"image/tiff",
	"image/webp",
	"image/x-icon",
}

// binaryContainers are archive, application and document-container types.
// Children (docx under zip, shared objects under ELF) are caught through the
// parent chain.
var binaryContainers = []string{
	// archives
	"application/zip",
	"application/x-tar",
	"application/gzip",
	"application/x-bzip2",
	"application/x-xz",
	"application/x-7z-compressed",
	"application/x-rar-compressed",
	"application/vnd.rar",
	"application/zstd",
	"application/x-lzip",
	"application/x-archive",
	"application/x-cpio",
	"application/x-xar",
	"application/vnd.ms-cab-compressed",
	"application/vnd.debian.binary-package",
	"application/x-rpm",
	"application/x-iso9660-image",
	"application/x-chrome-extension",
	"application/x-sqlite3",
	"application/x-shockwave-flash",
	"application/vnd.ms-fontobject",
	"application/dicom",
	// executables / applications
	"application/x-elf",
	"application/vnd.microsoft.portable-executable",
	"application/x-mach-binary",
	"application/x-java-applet",
	"application/wasm",
	// documents
	"application/pdf",
	"application/postscript",
	"application/x-ole-storage",
	"application/msword",
	"application/vnd.ms-excel",
	"application/vnd.ms-powerpoint",
	"text/rtf",
}

// IsImage implements SignatureMatcher.
func (MimeMatcher) IsImage(prefix []byte) bool {
	for m := mimetype.Detect(prefix); m != nil; m = m.Parent() {
		if is(m, rasterImages) {
			return true
		}
	}
	return false
}

// IsBinaryContainer implements SignatureMatcher.
func (MimeMatcher) IsBinaryContainer(prefix []byte) bool {
	for m := mimetype.Detect(prefix); m != nil; m = m.Parent() {
		if is(m, binaryContainers) {
			return true
		}
	}
	return false
}

func is(m *mimetype.MIME, set []string) bool {
	for _, s := range set {
		if m.Is(s) {
			return true
		}
	}
	return false
}
