package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/neox5/datareader/internal/app"
	"github.com/neox5/datareader/internal/config"
	"github.com/neox5/datareader/internal/monitor"
	"github.com/neox5/datareader/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "datareader",
		Usage:   "Load hierarchical data files with includes and templates",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to settings file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:    "data-path",
				Aliases: []string{"d"},
				Usage:   "directory relative identifiers are resolved against",
			},
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "template variable as key=value (repeatable)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "load",
				Usage:     "load data files and print the merged document",
				ArgsUsage: "[identifiers...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output format (yaml, json, toml)",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "print only the value at a dot separated key path (write a literal dot as \\.)",
					},
				},
				Action: load,
			},
			{
				Name:      "serve",
				Usage:     "load data files once and serve them over HTTP",
				ArgsUsage: "[identifiers...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "listen port (overrides server.port)",
					},
				},
				Action: serve,
			},
		},
	}
}

// setup configures logging and builds the application from the settings
// file and command line overrides.
func setup(cmd *cli.Command) (*app.App, *slog.Logger, error) {
	configPath := cmd.String("config")

	// Configure logging level
	logLevel := slog.LevelInfo
	if cmd.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	// stdout is reserved for load output
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Debug("starting datareader", "version", version.String(), "config", configPath)

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}

	return app.New(cfg, logger), logger, nil
}

// applyFlags overrides settings with command line values.
func applyFlags(cmd *cli.Command, cfg *config.Config) error {
	if path := cmd.String("data-path"); path != "" {
		cfg.DataPath = path
	}

	vars, err := parseVars(cmd.StringSlice("var"))
	if err != nil {
		return err
	}
	maps.Copy(cfg.Vars, vars)

	if output := cmd.String("output"); output != "" {
		cfg.Output = strings.ToLower(output)
	}

	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
		if err := cfg.Server.Validate(); err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}
	return nil
}

// parseVars parses key=value pairs.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q (must be key=value)", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

func load(ctx context.Context, cmd *cli.Command) error {
	application, _, err := setup(cmd)
	if err != nil {
		return err
	}

	doc, err := application.Load(cmd.Args().Slice())
	if err != nil {
		return err
	}

	out, err := application.Encode(doc, cmd.String("key"))
	if err != nil {
		return err
	}

	_, err = cmd.Root().Writer.Write(out)
	return err
}

func serve(ctx context.Context, cmd *cli.Command) error {
	application, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	cfg := application.Config

	doc, err := application.Load(cmd.Args().Slice())
	if err != nil {
		return err
	}

	otelExporter, err := application.NewOTELExporter()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	srv := application.NewServer(doc)

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start resource monitor
	if cfg.Monitor.Enabled {
		mon, err := monitor.New(cfg.Monitor.Interval, application.Recorder, logger)
		if err != nil {
			return err
		}
		mon.Run(shutdownCtx)
		defer mon.Wait()
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	wg.Go(func() {
		if err := srv.Start(shutdownCtx); err != nil {
			errChan <- fmt.Errorf("server: %w", err)
		}
	})

	if otelExporter != nil {
		defer func() {
			if err := otelExporter.Stop(); err != nil {
				slog.Warn("otel exporter shutdown failed", "error", err)
			}
		}()
		wg.Go(func() {
			if err := otelExporter.Start(shutdownCtx); err != nil {
				errChan <- fmt.Errorf("otel exporter: %w", err)
			}
		})
	}

	slog.Debug("--- Application Running ---")

	// Wait for shutdown or error
	var runErr error
	select {
	case runErr = <-errChan:
		slog.Error("serve error", "error", runErr)
		stop() // Cancel context to trigger shutdown
	case <-shutdownCtx.Done():
		// Graceful shutdown triggered
	}

	slog.Debug("--- Shutdown Initiated ---")

	// The components' Start methods return once shutdownCtx is cancelled
	wg.Wait()

	slog.Info("shutdown complete")
	return runErr
}
