package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/indigo-web/staticd/config"
	"github.com/indigo-web/staticd/internal/logging"
	"github.com/indigo-web/staticd/internal/server"
	"github.com/indigo-web/staticd/metrics"
	"github.com/indigo-web/staticd/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "staticd [DIRECTORY]",
		Short: "Serve static files over HTTP/1.1",
		Long: `staticd serves files from a single directory over plain HTTP/1.1.

Every connection carries exactly one request. Only GET and HEAD are allowed.
Missing files are answered with 404.html from the served directory, if present.

Settings are taken from flags, STATICD_* environment variables (e.g.
STATICD_NET_PORT=8080) and the optional config file, in that order.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath, args)
			if err != nil {
				return reportError(cmd, err)
			}

			return reportError(cmd, run(cmd.Context(), cmd.OutOrStdout(), cfg))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to a YAML, TOML or JSON config file")
	flags.String("root", ".", "served directory, DIRECTORY takes precedence")
	flags.Uint16P("port", "p", 80, "port to listen on")
	flags.String("address", "", "interface to listen on, all if empty")
	flags.IntP("threads", "t", 2, "number of workers handling connections")
	flags.Int("read-buffer-size", 1024, "size of the buffer the request is read into")
	flags.Duration("read-timeout", 0, "limit on the initial read, 0 disables it")
	flags.Float64("accept-rate", 0, "connections accepted per second, 0 means unlimited")
	flags.Bool("case-insensitive-headers", false, "look request headers up case-insensitively")
	flags.String("log-level", "info", "one of debug, info, warn, error")
	flags.String("log-format", "console", "console or json")
	flags.Uint16("metrics-port", 0, "port of the Prometheus endpoint, 0 disables it")

	cmd.AddCommand(newConfigCmd(&configPath))

	return cmd
}

// loadConfig applies the positional directory, if passed, over everything else.
func loadConfig(cmd *cobra.Command, path string, args []string) (*config.Config, error) {
	overrides := make(map[string]any)
	if len(args) > 0 {
		overrides["root"] = args[0]
	}

	return config.Load(path, cmd.Flags(), overrides)
}

func run(ctx context.Context, out io.Writer, cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	var m *metrics.Metrics
	if cfg.Metrics.Port > 0 {
		m = metrics.New(cfg.Metrics.Namespace)
	}

	handler := server.New(cfg, logger, m)
	sup := transport.NewSupervisor(cfg, transport.NewTCP(), handler.Serve, logger, m)
	if err = sup.Bind(); err != nil {
		return fmt.Errorf("bind %s: %w", transport.Address(cfg.NET), err)
	}

	printBanner(out, cfg, sup.Addr())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sup.Run(gctx)
	})

	if m != nil {
		addr := net.JoinHostPort(cfg.NET.Address, strconv.FormatUint(uint64(cfg.Metrics.Port), 10))
		g.Go(func() error {
			return metrics.NewServer(m, addr, logger.Named("metrics")).Serve(gctx)
		})
	}

	if err = g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}

	return nil
}

func printBanner(out io.Writer, cfg *config.Config, addr net.Addr) {
	title := color.New(color.FgCyan, color.Bold)
	key := color.New(color.Faint)

	_, _ = title.Fprintln(out, "staticd")
	_, _ = key.Fprint(out, "  serving   ")
	_, _ = fmt.Fprintln(out, cfg.Root)
	_, _ = key.Fprint(out, "  address   ")
	_, _ = fmt.Fprintf(out, "http://%s\n", addr)
	_, _ = key.Fprint(out, "  workers   ")
	_, _ = fmt.Fprintln(out, cfg.Threads)

	if cfg.Metrics.Port > 0 {
		_, _ = key.Fprint(out, "  metrics   ")
		_, _ = fmt.Fprintf(out, ":%d/metrics\n", cfg.Metrics.Port)
	}
}

func reportError(cmd *cobra.Command, err error) error {
	if err != nil {
		_, _ = color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
	}

	return err
}
