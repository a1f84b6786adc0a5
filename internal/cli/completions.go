package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/transient/internal/classify"
	"github.com/vvka-141/transient/internal/logging"
	"github.com/vvka-141/transient/pkg/transient"
)

// knownTechnologies are offered even when the document maps none of them.
var knownTechnologies = []string{
	transient.TechnologyDatabaseConnection,
	transient.TechnologyDatabaseCommand,
	transient.TechnologyMessagingConnection,
	transient.TechnologyMessagingRequest,
	transient.TechnologyCache,
}

func filterPrefix(candidates []string, toComplete string) []string {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			matches = append(matches, c)
		}
	}
	return matches
}

// completeStrategyNames provides shell completion for strategy names.
func completeStrategyNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	registry, err := loadRegistry(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return filterPrefix(registry.Names(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeTechnologies provides shell completion for --technology.
func completeTechnologies(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	keys := slices.Clone(knownTechnologies)
	if registry, err := loadRegistry(cmd); err == nil {
		keys = append(keys, slices.Collect(maps.Keys(registry.Technologies()))...)
	}
	slices.Sort(keys)
	return filterPrefix(slices.Compact(keys), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeClassifiers provides shell completion for --classifier.
func completeClassifiers(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix(classify.Backends(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completeLogFormats provides shell completion for --log-format.
func completeLogFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return filterPrefix([]string{logging.FormatText, logging.FormatJSON}, toComplete), cobra.ShellCompDirectiveNoFileComp
}
