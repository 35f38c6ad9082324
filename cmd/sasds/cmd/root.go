package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sasds",
	Short: "A SAS-style DATA-step and PROC interpreter",
	Long: `sasds runs SAS-style programs: DATA steps that transform typed,
variable-width datasets row by row, and PROCs (SORT, MEANS, FREQ, PRINT,
a minimal SQL SELECT/CREATE TABLE) that operate on whole tables.

Datasets live in libraries, a named directory holding one binary member
per dataset plus a YAML catalog sidecar describing its columns.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("json-log", false, "emit the log sink as one JSON object per line")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
