package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// requireArgs returns a positional-args validator that explains every missing
// argument with usage and an example. Too many arguments keep cobra's wording.
func requireArgs(example string, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < len(names) {
			missing := names[len(args):]
			return fmt.Errorf(`missing required argument: %s

Usage: %s

Example:
  %s %s`, strings.Join(missing, " "), cmd.UseLine(), cmd.CommandPath(), example)
		}
		if len(args) > len(names) {
			return fmt.Errorf("accepts %d arg(s), received %d", len(names), len(args))
		}
		return nil
	}
}

// RequireDSN validates that exactly one <dsn> argument is provided.
var RequireDSN = requireArgs("postgresql://postgres@localhost:5432/postgres", "<dsn>")

// RequireURLAndSubject validates that a <url> and a <subject> argument are provided.
var RequireURLAndSubject = requireArgs("nats://localhost:4222 svc.health", "<url>", "<subject>")
