package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/iwvelando/rentcheck/internal/server"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"go.uber.org/zap"
)

type serveCmd struct {
	serverConfig  string
	address       string
	maxUploadSize string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard API over HTTP" }
func (*serveCmd) Usage() string {
	return `rentcheck serve [-server-config <file>] [-address <host:port>] [-max-upload-size <size>]

  Serves the dashboard screens of the configured ledger as JSON.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	f.StringVar(&c.address, "address", "", "listen address override")
	f.StringVar(&c.maxUploadSize, "max-upload-size", "", "ledger upload limit override, e.g. 512K")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	srvCfg, err := server.LoadConfig(c.serverConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main.serve\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", c.serverConfig, err)
		return subcommands.ExitFailure
	}
	if c.address != "" {
		srvCfg.Address = c.address
	}
	if c.maxUploadSize != "" {
		if err := srvCfg.SetMaxUploadSize(c.maxUploadSize); err != nil {
			fmt.Fprintf(os.Stderr, "{\"op\": \"main.serve\", \"level\": \"fatal\", \"msg\": \"invalid -max-upload-size\", \"error\": \"%v\"}\n", err)
			return subcommands.ExitUsageError
		}
	}

	s, status := openSession(&srvCfg.Logging)
	if s == nil {
		return status
	}
	defer s.close()

	opts := server.Options{
		MaxUploadSize: srvCfg.UploadSizeBytes(),
		Version:       version,
		CacheTTL:      srvCfg.CacheTTLDuration(),
	}
	if s.conf.Today != "" {
		today := s.today
		opts.Today = &today
	}

	httpServer := &http.Server{
		Addr:         srvCfg.Address,
		Handler:      server.NewHandler(s.logger, s.ledger, s.builder, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed",
				zap.String("op", "main.serve"),
				zap.Error(err),
			)
		}
	}()

	s.logger.Info("server starting",
		zap.String("op", "main.serve"),
		zap.String("address", srvCfg.Address),
		zap.Int64("maxUploadSize", srvCfg.UploadSizeBytes()),
		zap.Duration("cacheTTL", srvCfg.CacheTTLDuration()),
		zap.String("version", version),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("server failed",
			zap.String("op", "main.serve"),
			zap.Error(err),
		)
		return subcommands.ExitFailure
	}
	s.logger.Info("server stopped", zap.String("op", "main.serve"))
	return subcommands.ExitSuccess
}
