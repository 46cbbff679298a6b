package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapprice/internal/features"
	"github.com/leapstack-labs/leapprice/internal/model"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapprice version, schema version and model artifact format.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "leapprice v%s\n", version)
			_, _ = fmt.Fprintf(out, "schema %s, artifact format %d\n", features.SchemaVersion, model.ArtifactVersion)
			_, _ = fmt.Fprintf(out, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
