// cmd/loan-form/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var oe *outcomeError
		if !stderrors.As(err, &oe) {
			fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		}
		os.Exit(1)
	}
}
