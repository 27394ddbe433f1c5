package main

import (
	"fmt"
	"os"

	"github.com/codyrobertson/critical-claude-sub003/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
