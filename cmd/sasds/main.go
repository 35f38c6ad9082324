// Command sasds runs SAS-style DATA step / PROC programs.
package main

import (
	"os"

	"github.com/sasds/sasds/cmd/sasds/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
