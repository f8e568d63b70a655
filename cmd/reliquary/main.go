package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"reliquary/internal/services"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err once, with a remedy for the error kinds a user can
// act on. Cancellation is silent.
func reportError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintln(w, "error:", err)
	switch services.Kind(err) {
	case "corruption":
		fmt.Fprintln(w, "hint: the file exists but cannot be parsed; restore it from a backup or vault snapshot")
	case "crypto":
		fmt.Fprintln(w, "hint: the vault key does not match the snapshot or the snapshot was modified")
	case "configuration":
		fmt.Fprintln(w, "hint: run `reliquary config validate` to check the configuration")
	}
}
