package main

import (
	"fmt"
	"os"

	"github.com/msto63/hivemind/cmd/hivemind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Fehler: %v\n", err)
		os.Exit(cmd.ExitStatus(err))
	}
}
