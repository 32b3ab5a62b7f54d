package utils

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// OnShutdownSignal runs onShutdown in the background once SIGINT or SIGTERM
// arrives, then exits.
func OnShutdownSignal(onShutdown func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\n⚠️ Received signal %v, shutting down...\n", sig)

		if onShutdown != nil {
			onShutdown()
		}

		os.Exit(0)
	}()
}
