// main is the entry point of the churnrisk CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cerennceyhan/e-commerce-churn-prediction/cmd"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/contract"
	"github.com/cerennceyhan/e-commerce-churn-prediction/internal/persist"
)

// shutdown releases the store and flushes profiles and logs.
func shutdown() {
	persist.CloseStore()
	if err := cmd.Shutdown(); err != nil {
		contract.LogWarn("Shutdown incomplete", err)
	}
}

func main() {
	// Ctrl-C cancels the context; the extraction loop stops after the current product.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd.SetStoreManager(persist.Manager)
	err := cmd.Execute(ctx)
	stop()
	shutdown()
	if err != nil {
		contract.LogFatal("churnrisk failed", err)
	}
}
