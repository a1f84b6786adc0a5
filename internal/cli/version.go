package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const asciiLogo = ` _                      _            _
| |_ _ __ __ _ _ __  ___(_) ___ _ __ | |_
| __| '__/ _' | '_ \/ __| |/ _ \ '_ \| __|
| |_| | | (_| | | | \__ \ |  __/ | | | |_
 \__|_|  \__,_|_| |_|___/_|\___|_| |_|\__|`

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		writeVersionInfo(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// resolveVersionInfo prefers ldflags values and falls back to the module
// build info for `go install` builds.
func resolveVersionInfo() (string, string, string) {
	v, c, d := version, commit, date
	if v != "dev" {
		return v, c, d
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c, d
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 12 {
				c = s.Value[:12]
			} else {
				c = s.Value
			}
		case "vcs.time":
			d = s.Value
		}
	}
	return v, c, d
}

func printVersionInfo() {
	writeVersionInfo(os.Stdout, os.Stderr)
}

// writeVersionInfo prints version information.
// Version string goes to out for pipeline consumption.
// Decorative content goes to errOut.
func writeVersionInfo(out, errOut io.Writer) {
	v, c, d := resolveVersionInfo()
	fmt.Fprintln(errOut, asciiLogo)
	fmt.Fprintln(errOut)
	fmt.Fprintf(out, "transient %s (%s, %s) %s/%s\n", v, c, d, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintln(errOut, "Retry strategies for transient failures")
	fmt.Fprintln(errOut)
	fmt.Fprintln(errOut, "Repository: https://github.com/vvka-141/transient")
}
