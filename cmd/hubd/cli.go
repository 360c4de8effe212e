package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hubd/internal/common/fsutil"
	"hubd/internal/config"
	"hubd/internal/host"
	"hubd/internal/httpapi"
	"hubd/internal/logging"
)

// configSearchDirs are searched for a hubd config when serve gets no --config.
var configSearchDirs = []string{".", "~/.config/hubd"}

type serveFlags struct {
	configPath      string
	addr            string
	logLevel        string
	corsOrigins     string
	setupTimeout    time.Duration
	announceTimeout time.Duration
	shutdownTimeout time.Duration
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hubd",
		Short:         "Component host with runtime service and platform discovery",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCheckConfigCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the host and its HTTP API",
		Example: "  hubd serve --config ./hubd.yaml --addr :8123",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if path == "" {
				path, _ = fsutil.FindConfig(configSearchDirs...)
			}
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = f.addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = f.logLevel
			}
			if origins := splitCSV(f.corsOrigins); len(origins) > 0 {
				cfg.CORS.Enabled = true
				cfg.CORS.AllowedOrigins = origins
			}
			return serve(cmd.Context(), cfg, f)
		},
	}
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file (.yaml, .json or .toml); searched in . and ~/.config/hubd when unset")
	cmd.Flags().StringVar(&f.addr, "addr", config.DefaultAddr, "HTTP listen address (defaults HUBD_ADDR)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error|off (defaults HUBD_LOG_LEVEL)")
	cmd.Flags().StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated CORS origins; enables CORS when set")
	cmd.Flags().DurationVar(&f.setupTimeout, "setup-timeout", 0, "Upper bound for one component setup (0 disables)")
	cmd.Flags().DurationVar(&f.announceTimeout, "announce-timeout", 30*time.Second, "Upper bound for one /discover or /platforms request")
	cmd.Flags().DurationVar(&f.shutdownTimeout, "shutdown-timeout", 5*time.Second, "Grace period for draining on shutdown")
	return cmd
}

func serve(parent context.Context, cfg config.Config, f *serveFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	log := logging.New(cfg.LogLevel, nil)
	httpapi.SetLogger(log)
	httpapi.SetAnnounceTimeout(f.announceTimeout)
	if cfg.CORS.Enabled {
		methods := cfg.CORS.AllowedMethods
		if len(methods) == 0 {
			methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		}
		headers := cfg.CORS.AllowedHeaders
		if len(headers) == 0 {
			headers = []string{"Content-Type"}
		}
		httpapi.SetCORSOptions(true, cfg.CORS.AllowedOrigins, methods, headers)
	}

	h, err := host.New(&cfg, host.WithLogger(log), host.WithSetupTimeout(f.setupTimeout))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	h.Start()
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(h), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Strs("components", cfg.ComponentNames()).Msg("hubd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			_ = h.Stop(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), f.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return h.Stop(sctx)
}

func newCheckConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "check-config",
		Short: "Load a config file and list the components it activates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			return checkConfig(cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&path, "config", "", "Config file (.yaml, .json or .toml)")
	return cmd
}

// checkConfig prints every configured component and fails if any is unknown.
func checkConfig(cmd *cobra.Command, cfg config.Config) error {
	h, err := host.New(&cfg)
	if err != nil {
		return err
	}
	known := map[string]bool{}
	for _, name := range h.Setup().Registered() {
		known[name] = true
	}
	var unknown []string
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "addr: %s\nlog_level: %s\n", cfg.Addr, cfg.LogLevel)
	for _, name := range cfg.ComponentNames() {
		state := "ok"
		if !known[name] {
			state = "unknown"
			unknown = append(unknown, name)
		}
		fmt.Fprintf(out, "component %s: %s\n", name, state)
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown components: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hubd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// loadConfig reads path when set, then applies env overrides and defaults.
func loadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
