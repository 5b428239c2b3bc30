package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"sflabel/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if services.IsRetryable(err) {
				fmt.Fprintln(os.Stderr, "The store failure is transient; re-running the command is safe.")
			}
		}
		os.Exit(1)
	}
}
