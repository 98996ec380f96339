// Package smartclip decides how a set of inputs lands on the clipboard and
// drives the classifier, the dispatch policy, the text pipeline and the
// clipboard sink for one invocation.
package smartclip

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.klb.dev/smartclip/internal/classify"
	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/dispatch"
	"go.klb.dev/smartclip/internal/logging"
	"go.klb.dev/smartclip/internal/pathres"
	"go.klb.dev/smartclip/internal/textpipe"
)

// Mode names the clipboard representation a run produced.
type Mode string

const (
	ModeImage         Mode = "image"
	ModeImagesAsFiles Mode = "images-as-files"
	ModeFiles         Mode = "files"
	ModeText          Mode = "text"
	ModePath          Mode = "path"
)

// Result describes a successful run.
type Result struct {
	Mode Mode
	// Count is the number of paths delivered, or of files streamed as text.
	Count int
}

// Config wires an Orchestrator. Sink and Resolver are required.
type Config struct {
	Sink       clip.Sink
	Resolver   pathres.Resolver
	Classifier *classify.Classifier // nil uses the mimetype-backed default
	Logger     *slog.Logger
	Now        func() time.Time // stamps text headers; nil uses time.Now
	Stdin      io.Reader        // nil uses os.Stdin
}

// Orchestrator runs copy operations. Each call is independent.
type Orchestrator struct {
	sink     clip.Sink
	resolver pathres.Resolver
	classify *classify.Classifier
	log      *slog.Logger
	now      func() time.Time
	stdin    io.Reader
}

// New returns an Orchestrator for cfg.
func New(cfg Config) *Orchestrator {
	log := logging.OrDiscard(cfg.Logger)
	o := &Orchestrator{
		sink:     cfg.Sink,
		resolver: cfg.Resolver,
		classify: cfg.Classifier,
		log:      log.With("component", "smartclip"),
		now:      cfg.Now,
		stdin:    cfg.Stdin,
	}
	if o.classify == nil {
		o.classify = classify.New(nil, log)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.stdin == nil {
		o.stdin = os.Stdin
	}
	return o
}

// Copy is smart mode. With no paths, stdin is streamed as text. Otherwise
// every path is classified and the batch is dispatched as one image, a set
// of file objects, or text. A mixed batch returns *dispatch.MixedContentError
// and nothing reaches the clipboard.
func (o *Orchestrator) Copy(paths []string, opts textpipe.Options) (Result, error) {
	if len(paths) == 0 {
		o.log.Debug("no paths, reading stdin")
		if err := o.copyText(textpipe.Source{Stdin: o.stdin}, opts); err != nil {
			return Result{}, err
		}
		return Result{Mode: ModeText}, nil
	}

	verdicts, err := o.classify.ClassifyAll(paths)
	if err != nil {
		return Result{}, err
	}
	out := dispatch.Decide(paths, verdicts)
	o.log.Debug("dispatch decided",
		"action", out.Action.String(),
		"images", out.Tally.Images,
		"files", out.Tally.Files,
		"text", out.Tally.Text,
	)

	switch out.Action {
	case dispatch.RejectedMixed:
		return Result{}, out.Err()
	case dispatch.SingleImage:
		return o.CopyImage(out.Paths[0])
	case dispatch.MultiAsFileObjects:
		res, err := o.CopyFiles(out.Paths)
		if err == nil && out.Tally.Images > 0 {
			res.Mode = ModeImagesAsFiles
		}
		return res, err
	default:
		if err := o.copyText(textpipe.Source{Paths: paths}, opts); err != nil {
			return Result{}, err
		}
		return Result{Mode: ModeText, Count: len(paths)}, nil
	}
}

// CopyImage places a single image on the clipboard without classifying it.
func (o *Orchestrator) CopyImage(path string) (Result, error) {
	if err := o.send([]string{path}, clip.KindImage); err != nil {
		return Result{}, err
	}
	return Result{Mode: ModeImage, Count: 1}, nil
}

// CopyFiles places paths on the clipboard as file objects without
// classifying them.
func (o *Orchestrator) CopyFiles(paths []string) (Result, error) {
	if len(paths) == 0 {
		return Result{}, errors.New("no files to copy")
	}
	if err := o.send(paths, clip.KindFiles); err != nil {
		return Result{}, err
	}
	return Result{Mode: ModeFiles, Count: len(paths)}, nil
}

// CopyPath copies the resolved path of a file as text.
func (o *Orchestrator) CopyPath(path string) (Result, error) {
	resolved, err := o.resolver.Resolve(path)
	if err != nil {
		return Result{}, err
	}
	ch, err := o.sink.OpenText()
	if err != nil {
		return Result{}, fmt.Errorf("open clipboard: %w", err)
	}
	_, werr := io.WriteString(ch, resolved)
	if err := finish(ch, werr); err != nil {
		return Result{}, err
	}
	return Result{Mode: ModePath, Count: 1}, nil
}

// send resolves every path first so a bad path aborts before the sink is
// touched.
func (o *Orchestrator) send(paths []string, kind clip.Kind) error {
	resolved, err := pathres.ResolveAll(o.resolver, paths)
	if err != nil {
		return err
	}
	o.log.Debug("sending paths", "kind", kind.String(), "count", len(resolved))
	return o.sink.SendPaths(resolved, kind)
}

func (o *Orchestrator) copyText(src textpipe.Source, opts textpipe.Options) error {
	if err := src.Validate(); err != nil {
		return err
	}
	ch, err := o.sink.OpenText()
	if err != nil {
		return fmt.Errorf("open clipboard: %w", err)
	}
	p := &textpipe.Pipeline{Options: opts, Log: o.log, Now: o.now}
	return finish(ch, p.Stream(ch, src))
}

// finish commits ch regardless of how streaming went, reporting both
// failures when both happen.
func finish(ch clip.TextChannel, streamErr error) error {
	ferr := ch.Finish()
	if ferr == nil {
		return streamErr
	}
	ferr = fmt.Errorf("finish clipboard text: %w", ferr)
	if streamErr == nil {
		return ferr
	}
	return errors.Join(streamErr, ferr)
}
