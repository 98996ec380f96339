package smartclip

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/dispatch"
	"go.klb.dev/smartclip/internal/textpipe"
)

type sent struct {
	paths []string
	kind  clip.Kind
}

type fakeChannel struct {
	buf       bytes.Buffer
	finishes  int
	writeErr  error
	finishErr error
}

func (c *fakeChannel) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.buf.Write(p)
}

func (c *fakeChannel) Finish() error {
	c.finishes++
	return c.finishErr
}

type fakeSink struct {
	sent     []sent
	channels []*fakeChannel
	openErr  error
	sendErr  error
	// template for new channels
	writeErr  error
	finishErr error
}

func (s *fakeSink) Name() string { return "fake" }

func (s *fakeSink) SendPaths(paths []string, kind clip.Kind) error {
	s.sent = append(s.sent, sent{paths: paths, kind: kind})
	return s.sendErr
}

func (s *fakeSink) OpenText() (clip.TextChannel, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	ch := &fakeChannel{writeErr: s.writeErr, finishErr: s.finishErr}
	s.channels = append(s.channels, ch)
	return ch, nil
}

func (s *fakeSink) touched() bool { return len(s.sent) > 0 || len(s.channels) > 0 }

type fakeResolver struct {
	calls []string
	fail  string
}

func (r *fakeResolver) Resolve(p string) (string, error) {
	r.calls = append(r.calls, p)
	if p == r.fail {
		return "", errors.New("cannot resolve " + p)
	}
	return "WIN:" + p, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func fixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func newTest(sink *fakeSink, res *fakeResolver, stdin string) *Orchestrator {
	return New(Config{
		Sink:     sink,
		Resolver: res,
		Now:      func() time.Time { return time.Date(2025, 11, 25, 17, 17, 2, 0, time.UTC) },
		Stdin:    strings.NewReader(stdin),
	})
}

var defaults = textpipe.Options{StripANSI: true}

func TestCopy_SingleImage(t *testing.T) {
	dir := t.TempDir()
	img := fixture(t, dir, "shot.dat", pngHeader)
	sink, res := &fakeSink{}, &fakeResolver{}

	got, err := newTest(sink, res, "").Copy([]string{img}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeImage, Count: 1}, got)
	assert.Equal(t, []sent{{paths: []string{"WIN:" + img}, kind: clip.KindImage}}, sink.sent)
	assert.Empty(t, sink.channels)
}

func TestCopy_SeveralImagesGoAsFiles(t *testing.T) {
	dir := t.TempDir()
	a := fixture(t, dir, "a.png", pngHeader)
	b := fixture(t, dir, "b.png", pngHeader)
	sink, res := &fakeSink{}, &fakeResolver{}

	got, err := newTest(sink, res, "").Copy([]string{a, b}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeImagesAsFiles, Count: 2}, got)
	require.Len(t, sink.sent, 1)
	assert.Equal(t, clip.KindFiles, sink.sent[0].kind)
	assert.Equal(t, []string{"WIN:" + a, "WIN:" + b}, sink.sent[0].paths)
}

func TestCopy_FileObjects(t *testing.T) {
	dir := t.TempDir()
	z := fixture(t, dir, "bundle.zip", []byte("whatever"))
	s := fixture(t, dir, "part.stl", []byte("solid x"))
	sink, res := &fakeSink{}, &fakeResolver{}

	got, err := newTest(sink, res, "").Copy([]string{z, s}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeFiles, Count: 2}, got)
	assert.Equal(t, []sent{{paths: []string{"WIN:" + z, "WIN:" + s}, kind: clip.KindFiles}}, sink.sent)
}

func TestCopy_MixedTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	img := fixture(t, dir, "a.png", pngHeader)
	txt := fixture(t, dir, "notes.txt", []byte("hello\n"))
	sink, res := &fakeSink{}, &fakeResolver{}

	_, err := newTest(sink, res, "").Copy([]string{img, txt}, defaults)
	var mixed *dispatch.MixedContentError
	require.True(t, errors.As(err, &mixed))
	assert.Equal(t, dispatch.MixedContentError{Images: 1, Text: 1}, *mixed)
	assert.False(t, sink.touched())
	assert.Empty(t, res.calls)
}

func TestCopy_ClassifyFailureTouchesNothing(t *testing.T) {
	sink := &fakeSink{}
	_, err := newTest(sink, &fakeResolver{}, "").Copy([]string{filepath.Join(t.TempDir(), "gone.txt")}, defaults)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, sink.touched())
}

func TestCopy_ResolverFailureAbortsBeforeSink(t *testing.T) {
	dir := t.TempDir()
	a := fixture(t, dir, "a.zip", nil)
	b := fixture(t, dir, "b.zip", nil)
	sink, res := &fakeSink{}, &fakeResolver{fail: b}

	_, err := newTest(sink, res, "").Copy([]string{a, b}, defaults)
	assert.EqualError(t, err, "cannot resolve "+b)
	assert.False(t, sink.touched())
}

func TestCopy_TextFiles(t *testing.T) {
	dir := t.TempDir()
	a := fixture(t, dir, "a.txt", []byte("\x1b[31malpha\x1b[0m\n"))
	b := fixture(t, dir, "b.txt", []byte("beta\n"))
	sink := &fakeSink{}

	got, err := newTest(sink, &fakeResolver{}, "").Copy([]string{b, a}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeText, Count: 2}, got)
	require.Len(t, sink.channels, 1)
	ch := sink.channels[0]
	assert.Equal(t, 1, ch.finishes)
	assert.Equal(t,
		"# FILE: "+a+" READ: 2025-11-25T17:17:02Z\nalpha\n\n"+
			"# FILE: "+b+" READ: 2025-11-25T17:17:02Z\nbeta\n\n"+
			"# End of FILES. SENT: "+a+" "+b+"\n",
		ch.buf.String())
	assert.Empty(t, sink.sent)
}

func TestCopy_Stdin(t *testing.T) {
	sink := &fakeSink{}
	got, err := newTest(sink, &fakeResolver{}, "one\r\ntwo").Copy(nil, textpipe.Options{CRLF: true})
	require.NoError(t, err)
	assert.Equal(t, ModeText, got.Mode)
	require.Len(t, sink.channels, 1)
	assert.Equal(t, "one\r\ntwo\r\n", sink.channels[0].buf.String())
	assert.Equal(t, 1, sink.channels[0].finishes)
}

func TestCopy_InteractiveStdinIsUsageError(t *testing.T) {
	sink := &fakeSink{}
	o := New(Config{Sink: sink, Resolver: &fakeResolver{}, Stdin: nil})
	// No reader at all behaves like a terminal.
	o.stdin = nil
	_, err := o.Copy(nil, defaults)
	assert.ErrorIs(t, err, textpipe.ErrNoInput)
	assert.False(t, sink.touched())
}

func TestCopy_StreamErrorStillFinishes(t *testing.T) {
	boom := errors.New("pipe closed")
	sink := &fakeSink{writeErr: boom}

	_, err := newTest(sink, &fakeResolver{}, "data\n").Copy(nil, defaults)
	assert.ErrorIs(t, err, boom)
	require.Len(t, sink.channels, 1)
	assert.Equal(t, 1, sink.channels[0].finishes)
}

func TestCopy_FinishErrorSurfaces(t *testing.T) {
	exit := &clip.ExitError{Program: "clip.exe", Err: errors.New("exit status 1")}
	sink := &fakeSink{finishErr: exit}

	_, err := newTest(sink, &fakeResolver{}, "data\n").Copy(nil, defaults)
	var got *clip.ExitError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 1, sink.channels[0].finishes)
}

func TestCopy_BothErrorsReported(t *testing.T) {
	boom := errors.New("pipe closed")
	exit := &clip.ExitError{Program: "clip.exe", Err: errors.New("exit status 1")}
	sink := &fakeSink{writeErr: boom, finishErr: exit}

	_, err := newTest(sink, &fakeResolver{}, "data\n").Copy(nil, defaults)
	assert.ErrorIs(t, err, boom)
	var got *clip.ExitError
	assert.True(t, errors.As(err, &got))
	assert.Equal(t, 1, sink.channels[0].finishes)
}

func TestCopy_OpenTextFailure(t *testing.T) {
	sink := &fakeSink{openErr: errors.New("no clip.exe")}
	_, err := newTest(sink, &fakeResolver{}, "data\n").Copy(nil, defaults)
	assert.ErrorContains(t, err, "no clip.exe")
}

func TestCopyImage_Forced(t *testing.T) {
	sink, res := &fakeSink{}, &fakeResolver{}
	got, err := newTest(sink, res, "").CopyImage("anything.txt")
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeImage, Count: 1}, got)
	assert.Equal(t, []sent{{paths: []string{"WIN:anything.txt"}, kind: clip.KindImage}}, sink.sent)
}

func TestCopyImage_SinkError(t *testing.T) {
	sink := &fakeSink{sendErr: errors.New("powershell failed")}
	_, err := newTest(sink, &fakeResolver{}, "").CopyImage("x.png")
	assert.EqualError(t, err, "powershell failed")
}

func TestCopyFiles_Forced(t *testing.T) {
	sink, res := &fakeSink{}, &fakeResolver{}
	got, err := newTest(sink, res, "").CopyFiles([]string{"a.txt", "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeFiles, Count: 2}, got)
	assert.Equal(t, clip.KindFiles, sink.sent[0].kind)

	_, err = newTest(sink, res, "").CopyFiles(nil)
	assert.Error(t, err)
}

func TestCopyPath(t *testing.T) {
	sink, res := &fakeSink{}, &fakeResolver{}
	got, err := newTest(sink, res, "").CopyPath("notes.md")
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModePath, Count: 1}, got)
	require.Len(t, sink.channels, 1)
	assert.Equal(t, "WIN:notes.md", sink.channels[0].buf.String())
	assert.Equal(t, 1, sink.channels[0].finishes)
}

func TestCopyPath_ResolveFailure(t *testing.T) {
	sink, res := &fakeSink{}, &fakeResolver{fail: "nope"}
	_, err := newTest(sink, res, "").CopyPath("nope")
	assert.Error(t, err)
	assert.False(t, sink.touched())
}

func TestCopy_XPMSourceBatchesWithCode(t *testing.T) {
	dir := t.TempDir()
	icon := fixture(t, dir, "icon.h", []byte("/* XPM */\nstatic char *icon[] = {\"1 1 1 1\", \"  c None\", \" \"};\n"))
	src := fixture(t, dir, "main.c", []byte("#include \"icon.h\"\nint main(void) { return 0; }\n"))
	sink := &fakeSink{}

	got, err := newTest(sink, &fakeResolver{}, "").Copy([]string{icon, src}, defaults)
	require.NoError(t, err)
	assert.Equal(t, Result{Mode: ModeText, Count: 2}, got)
	assert.Empty(t, sink.sent)
	require.Len(t, sink.channels, 1)
	assert.Contains(t, sink.channels[0].buf.String(), "/* XPM */")
}
