package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sasds/sasds/internal/driver"
	"github.com/sasds/sasds/internal/lexer"
	"github.com/sasds/sasds/internal/parser"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive sasds session",
	Long: `Start a line-oriented REPL (spec §6). Input accumulates across lines
until a complete top-level statement (ending RUN;/QUIT;) is recognised;
exit, help, and ? are recognised as control words before parsing.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	d, err := driver.New(os.Stdout, os.Stdout)
	if err != nil {
		return err
	}
	defer d.Close()
	d.JSONLog = jsonLog

	scanner := bufio.NewScanner(os.Stdin)
	var pending strings.Builder

	prompt := func() {
		if pending.Len() == 0 {
			fmt.Print("sasds> ")
		} else {
			fmt.Print("> ")
		}
	}

	prompt()
	for scanner.Scan() {
		line := scanner.Text()
		word := strings.ToLower(strings.TrimSpace(line))
		if pending.Len() == 0 {
			switch word {
			case "exit", "quit":
				return nil
			case "help", "?":
				printReplHelp()
				prompt()
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteString("\n")

		if replStatementComplete(pending.String()) {
			d.RunSource(pending.String(), "<repl>")
			pending.Reset()
		}
		prompt()
	}
	return nil
}

// replStatementComplete reports whether buf holds at least one fully
// parseable top-level statement, so the REPL knows whether to execute what
// has accumulated or keep reading lines. A parse failure whose last error
// mentions running out of input ("got EOF") is treated as "need more
// input" rather than a real syntax error.
func replStatementComplete(buf string) bool {
	if strings.TrimSpace(buf) == "" {
		return false
	}
	p := parser.New(lexer.New(buf))
	_, status := p.ParseStatement()
	switch status {
	case parser.StatusOK:
		return true
	case parser.StatusIncomplete:
		return false
	default:
		errs := p.Errors()
		if len(errs) > 0 && strings.Contains(errs[len(errs)-1], "EOF") {
			return false
		}
		return true
	}
}

func printReplHelp() {
	fmt.Println("Commands: exit, quit, help, ?")
	fmt.Println("Otherwise, type a DATA step or PROC ending in RUN; or QUIT;")
}
