package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sasds/sasds/internal/driver"
	"github.com/sasds/sasds/internal/lexer"
	"github.com/sasds/sasds/internal/parser"
)

var (
	evalExpr string
	dumpAST  bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a sasds program",
	Long: `Execute a SAS-style program from a file or inline source.

Examples:
  # Run a program file
  sasds run program.sas

  # Evaluate inline source
  sasds run -e "data out; set in; run;"

  # Run with AST dump (for debugging)
  sasds run --dump-ast program.sas`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "run inline source instead of reading from a file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed program (for debugging)")
}

func runProgram(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	jsonLog, _ := cmd.Flags().GetBool("json-log")

	d, err := driver.New(os.Stdout, os.Stdout)
	if err != nil {
		return err
	}
	defer d.Close()
	d.JSONLog = jsonLog

	expanded, err := d.ExpandOnly(source)
	if err != nil {
		return fmt.Errorf("macro: %w", err)
	}

	if dumpAST {
		p := parser.New(lexer.New(expanded))
		prog := p.ParseProgram()
		fmt.Println("AST:")
		for _, stmt := range prog.Statements {
			fmt.Println(stmt.String())
		}
		fmt.Println()
	}

	code := d.RunExpanded(expanded, filename)
	if code != driver.ExitOK {
		os.Exit(code)
	}
	return nil
}

func readSource(eval string, args []string) (source, filename string, err error) {
	if eval != "" {
		return eval, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline source")
}
