package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sasds/sasds/internal/lexer"
)

var (
	showPos    bool
	showType   bool
	onlyErrors bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a sasds program",
	Long: `Tokenize (lex) a program and print the resulting tokens.

Examples:
  sasds lex program.sas
  sasds lex -e "data out; set in; run;"
  sasds lex --show-type --show-pos program.sas`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexProgram,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline source instead of reading from a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexProgram(cmd *cobra.Command, args []string) error {
	source, filename, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
	}

	l := lexer.New(source)
	count, errCount := 0, 0
	for {
		tok := l.NextToken()
		isIllegal := tok.Type == lexer.ILLEGAL
		if !onlyErrors || isIllegal {
			printToken(tok)
		}
		count++
		if isIllegal {
			errCount++
		}
		if tok.Type == lexer.EOF {
			break
		}
	}
	if verbose {
		fmt.Printf("Total tokens: %d, illegal: %d\n", count, errCount)
	}
	if onlyErrors && errCount > 0 {
		return fmt.Errorf("found %d illegal token(s)", errCount)
	}
	return nil
}

func printToken(tok lexer.Token) {
	var out string
	if showType {
		out = fmt.Sprintf("[%-12v]", tok.Type)
	}
	if tok.Type == lexer.EOF {
		out += " EOF"
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
