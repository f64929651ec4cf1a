package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/calcbread/internal/client/api"
	"github.com/iudanet/calcbread/internal/client/cli"
	"github.com/iudanet/calcbread/internal/client/iocli"
	"github.com/iudanet/calcbread/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	stdio := iocli.NewStdio()

	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "calcbread-client.db", "Path to local session database")
	flag.Usage = func() { cli.PrintUsage(stdio) }

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	os.Exit(run(args, *serverURL, *dbPath, stdio))
}

func run(args []string, serverURL, dbPath string, stdio iocli.IO) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := boltdb.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("error", err))
		}
	}()

	c := cli.New(api.NewClient(serverURL), sessions, stdio)

	if err := c.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUnknownCommand) {
			cli.PrintUsage(stdio)
		}
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("Calcbread Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
