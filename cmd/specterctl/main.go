package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/specter/internal/admin"
	"github.com/danmuck/specter/internal/config"
	"github.com/danmuck/specter/internal/logging"
	"github.com/danmuck/specter/internal/phantom"
	"github.com/danmuck/specter/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "path to a specter config (defaults when empty)")
	validate := flag.Bool("validate", false, "strictly validate -config and exit")
	flag.Parse()

	logging.ConfigureRuntime()

	if *validate {
		if _, err := config.Check(*path); err != nil {
			fmt.Fprintf(os.Stderr, "specterctl: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("specterctl: %s is valid\n", *path)
		return
	}

	cfg := defaultRuntimeConfig()
	if strings.TrimSpace(*path) != "" {
		loaded, err := loadRuntimeConfig(*path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "specterctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "specterctl: %v\n", err)
		os.Exit(1)
	}
}

// run hosts the configured phantoms until ctx is cancelled.
func run(ctx context.Context, cfg runtimeConfig) error {
	srv := server.New(cfg.Server)
	iface := phantom.New(srv, cfg.Phantom)
	srv.Attach(iface)
	defer iface.Shutdown("specter stopping")

	for _, entry := range cfg.Sessions {
		if _, ok := iface.OpenSession(entry.Name, entry.Address, entry.Port); !ok {
			log.Warn().Str("session", entry.Name).Msg("session not opened")
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 2)
	go func() {
		errs <- srv.Run(ctx, iface.Process)
	}()
	if strings.TrimSpace(cfg.Admin.Addr) != "" {
		api := admin.New(cfg.Admin, iface, srv)
		go func() {
			errs <- api.Serve(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		return err
	}
}
