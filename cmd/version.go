package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

// versionCmd prints build details.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of churnrisk.",
	Long: `Display the release version, commit, build time and the Go runtime the
binary was built with. Include this output when reporting extraction or store issues.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("churnrisk CLI\n")
		cmd.Printf("  Version:  %s\n", version)
		cmd.Printf("  Commit:   %s\n", commit)
		cmd.Printf("  Built:    %s\n", date)
		cmd.Printf("  Runtime:  %s\n", runtime.Version())
		cmd.Printf("  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}
