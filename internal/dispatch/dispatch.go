// Package dispatch reconciles per-file classifier verdicts into the single
// clipboard action taken for a batch of inputs.
package dispatch

import (
	"fmt"

	"go.klb.dev/smartclip/internal/classify"
)

// Action identifies the overall outcome for a batch.
type Action int

const (
	FallThroughText Action = iota
	SingleImage
	MultiAsFileObjects
	RejectedMixed
)

func (a Action) String() string {
	switch a {
	case FallThroughText:
		return "text"
	case SingleImage:
		return "single-image"
	case MultiAsFileObjects:
		return "file-objects"
	case RejectedMixed:
		return "rejected-mixed"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Tally counts verdicts across one invocation's input set.
type Tally struct {
	Images int
	Files  int
	Text   int
}

// Count tallies verdicts.
func Count(verdicts []classify.Verdict) Tally {
	var t Tally
	for _, v := range verdicts {
		switch v {
		case classify.Image:
			t.Images++
		case classify.FileObject:
			t.Files++
		default:
			t.Text++
		}
	}
	return t
}

// Categories returns how many of image/file/text have a non-zero count.
func (t Tally) Categories() int {
	n := 0
	for _, c := range []int{t.Images, t.Files, t.Text} {
		if c > 0 {
			n++
		}
	}
	return n
}

// Outcome is the decision for a batch. Paths is set for SingleImage (one
// element) and MultiAsFileObjects (all inputs, in input order).
type Outcome struct {
	Action Action
	Paths  []string
	Tally  Tally
}

// Err returns a *MixedContentError for RejectedMixed and nil otherwise.
func (o Outcome) Err() error {
	if o.Action != RejectedMixed {
		return nil
	}
	return &MixedContentError{Images: o.Tally.Images, Files: o.Tally.Files, Text: o.Tally.Text}
}

// MixedContentError reports a batch spanning more than one category. The
// whole batch is refused; nothing is partially copied.
type MixedContentError struct {
	Images int
	Files  int
	Text   int
}

func (e *MixedContentError) Error() string {
	return fmt.Sprintf(
		"mixed content detected (%d images, %d files/assets, %d text); run separate commands for each type",
		e.Images, e.Files, e.Text,
	)
}

// Decide applies the batch policy to paths and their verdicts (same length,
// same order):
//
//   - more than one category present → RejectedMixed
//   - images only → SingleImage for one path, MultiAsFileObjects otherwise
//   - file objects only → MultiAsFileObjects
//   - text only, or no input → FallThroughText
func Decide(paths []string, verdicts []classify.Verdict) Outcome {
	t := Count(verdicts)
	switch {
	case t.Categories() > 1:
		return Outcome{Action: RejectedMixed, Tally: t}
	case t.Images > 0 && len(paths) == 1:
		return Outcome{Action: SingleImage, Paths: []string{paths[0]}, Tally: t}
	case t.Images > 0, t.Files > 0:
		// The image clipboard holds a single bitmap; several images go as files.
		return Outcome{Action: MultiAsFileObjects, Paths: append([]string(nil), paths...), Tally: t}
	default:
		return Outcome{Action: FallThroughText, Tally: t}
	}
}
