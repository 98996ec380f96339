package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/pathres"
	"go.klb.dev/smartclip/internal/smartclip"
	"go.klb.dev/smartclip/internal/textpipe"
)

func newImgCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "img FILE",
		Short: "Copy an image as a bitmap, skipping detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator(v, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if _, err := o.CopyImage(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "[OK] Copied Image to Clipboard")
			return nil
		},
	}
}

func newFileCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "file FILE...",
		Short: "Copy files as file objects (attachments), skipping detection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator(v, cmd.InOrStdin())
			if err != nil {
				return err
			}
			res, err := o.CopyFiles(args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] Copied %d File Object(s) to Clipboard\n", res.Count)
			return nil
		},
	}
}

func newPathCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "path FILE",
		Short: "Copy the path of a file as text (a Windows path under WSL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator(v, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if _, err := o.CopyPath(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "[OK] Copied Path to Clipboard")
			return nil
		},
	}
}

func runSmart(cmd *cobra.Command, v *viper.Viper, args []string) error {
	opts := textOptions(v)
	if len(args) == 0 {
		// Fail on an interactive stdin before any clipboard helper starts.
		if err := (textpipe.Source{Stdin: cmd.InOrStdin()}).Validate(); err != nil {
			return err
		}
	}
	o, err := newOrchestrator(v, cmd.InOrStdin())
	if err != nil {
		return err
	}
	res, err := o.Copy(args, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okMessage(res, opts))
	return nil
}

func newOrchestrator(v *viper.Viper, stdin io.Reader) (*smartclip.Orchestrator, error) {
	log := setupLogging(v)
	sink, err := clip.New(v.GetString("backend"), log)
	if err != nil {
		return nil, err
	}
	log.Debug("clipboard backend selected", "backend", sink.Name())
	return smartclip.New(smartclip.Config{
		Sink:     sink,
		Resolver: pathres.New(sink.Name(), log),
		Logger:   log,
		Stdin:    stdin,
	}), nil
}

// okMessage is the one-line confirmation printed after a smart-mode copy.
func okMessage(res smartclip.Result, opts textpipe.Options) string {
	switch res.Mode {
	case smartclip.ModeImage:
		return "[OK] Copied Image to Clipboard"
	case smartclip.ModeImagesAsFiles:
		return fmt.Sprintf("[OK] Copied %d Images as Files", res.Count)
	case smartclip.ModeFiles:
		return fmt.Sprintf("[OK] Copied %d Files", res.Count)
	case smartclip.ModePath:
		return "[OK] Copied Path to Clipboard"
	}
	msg := "[OK] Copied Text"
	if !opts.StripANSI {
		msg += " (Raw ANSI)"
	}
	if opts.CRLF {
		msg += " (CRLF)"
	}
	return msg
}
