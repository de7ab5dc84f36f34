package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/ledgercheck/internal/server"
)

var (
	serverAddr       string
	serverDebug      bool
	readTimeout      time.Duration
	writeTimeout     time.Duration
	serveConcurrency int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for document verification.

The API provides endpoints for:
  - POST /api/v1/check    - Verify a single document (raw body)
  - POST /api/v1/compare  - Verify with every engine and compare
  - POST /api/v1/batch    - Verify a multipart upload of documents
  - GET  /api/v1/engines  - List registered engines
  - GET  /health          - Health check

Examples:
  # Start server on default port
  ledgercheck serve

  # Start on custom port with a vision engine enabled
  ledgercheck serve --address :9090 --gemini-api-key <key>

  # Start in debug mode
  ledgercheck serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
	serveCmd.Flags().IntVar(&serveConcurrency, "concurrency", 0, "Maximum concurrent documents per batch (0 = number of CPUs)")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline()
	if err != nil {
		return err
	}
	registry := buildRegistry()

	config := &server.Config{
		Address:        serverAddr,
		MaxConcurrency: serveConcurrency,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		Debug:          serverDebug,
	}

	level := slog.LevelInfo
	if serverDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	srv := server.NewServer(config, p, registry, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	fmt.Printf("Engines: %v\n", registry.Names())

	return srv.Run()
}
