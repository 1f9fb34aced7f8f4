package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/logging"
	"github.com/pressureprofile/rma-starter/internal/server"
)

func main() {
	// Create a new configuration
	cfg := config.NewConfig()

	srv := server.NewServer(cfg)

	fmt.Println("Starting RMA starter server...")
	fmt.Printf("Server will listen on %s:%d\n", cfg.ServerHost, cfg.ServerPort)

	// Create a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the server and handle shutdown
	if err := srv.Start(ctx); err != nil {
		logging.Fatalf("Server error: %v", err)
	}

	logging.Infof("Server shutdown complete")
}
