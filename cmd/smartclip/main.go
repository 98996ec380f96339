// smartclip: copy files or piped text to the clipboard in the right shape.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/smartclip/internal/clip"
	"go.klb.dev/smartclip/internal/textpipe"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "smartclip: %v\n", err)
		if errors.Is(err, textpipe.ErrNoInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "smartclip [flags] [FILES]...",
		Short: "Smart clipboard copy for files and piped text",
		Long: `smartclip looks at what it is given and picks the clipboard shape:

  one image                 copied as a bitmap
  several images            copied as file objects
  archives, binaries, CAD   copied as file objects
  text files or stdin       streamed as sanitized text

A batch mixing those categories is refused; run one command per type.
ANSI colour codes and control characters are stripped from text by default.

Under WSL the Windows clipboard is driven through powershell.exe and clip.exe.
Elsewhere xclip/xsel/wl-copy/pbcopy are used. Images need xclip or wl-copy;
without them the native clipboard holds images only while smartclip runs.

Config file search order (first found wins):
  /etc/smartclip/smartclip.toml
  $HOME/.config/smartclip/smartclip.toml
  path supplied via --config

All flags can be set via SMARTCLIP_<FLAG> env vars or config-file keys.`,
		Example: `  smartclip image.png        # copies the image
  smartclip doc.pdf          # copies a file object
  smartclip src/*.go --code  # copies text, fenced per file
  ls --color | smartclip     # pipes clean text
  ls --color | smartclip --no-strip`,
		// Files, not subcommand names, when no subcommand matches.
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmart(cmd, v, args)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolP("no-header", "n", false, "suppress file headers and footer in text mode")
	pf.Bool("no-strip", false, "keep ANSI colour codes and control characters")
	pf.Bool("crlf", false, "terminate text lines with CRLF")
	pf.Bool("code", false, "wrap each file in a markdown code fence")
	pf.String("backend", clip.BackendAuto, "clipboard backend: auto|wsl|native|command")
	addLoggingFlags(root)
	addConfigFlag(root)

	root.AddCommand(
		newImgCmd(v),
		newFileCmd(v),
		newPathCmd(v),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip config and logging setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smartclip %s\n", Version)
		},
	}
}
