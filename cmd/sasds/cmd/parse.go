package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sasds/sasds/internal/lexer"
	"github.com/sasds/sasds/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a sasds program and print the AST",
	Long: `Parse a program into its AST and print it, without executing it.

Examples:
  sasds parse program.sas
  sasds parse -e "proc print data=work.out; run;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseProgram,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "parse inline source instead of reading from a file")
}

func parseProgram(cmd *cobra.Command, args []string) error {
	source, _, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()

	for _, stmt := range prog.Statements {
		fmt.Println(stmt.String())
	}
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Println("error:", e)
		}
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}
	return nil
}
