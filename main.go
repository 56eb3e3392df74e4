// ABOUTME: Entry point for the voteverse CLI
// ABOUTME: Command-line and terminal client for the Voteverse polling service

package main

import (
	"fmt"
	"os"

	"github.com/arizayilmaz/voteverse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
