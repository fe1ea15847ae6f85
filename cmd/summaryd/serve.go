package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"summaryd/internal/backend"
	"summaryd/internal/config"
	"summaryd/internal/httpapi"
	"summaryd/internal/manager"
	"summaryd/internal/service"
	"summaryd/internal/tokens"
)

type serveFlags struct {
	configPath string
	addr       string
	logLevel   string
	logFormat  string
	backend    string
	modelName  string
	modelPath  string
	serverURL  string
	preload    bool
	retryMS    int
}

func newServeCmd(logOut io.Writer) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Example: "  summaryd serve --config summaryd.yaml\n" +
			"  summaryd serve --backend llama-server --server-url http://127.0.0.1:8080",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(f.configPath, func(c *config.Config) { applyFlags(cmd, f, c) })
			if err != nil {
				return err
			}
			log, err := newLogger(logOut, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", os.Getenv(config.EnvPrefix+"CONFIG"), "Path to a YAML, JSON or TOML config file")
	fl.StringVar(&f.addr, "addr", "", "HTTP listen address, e.g. :8000")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	fl.StringVar(&f.logFormat, "log-format", "", "Log format: json|console")
	fl.StringVar(&f.backend, "backend", "", "Model backend: llama|llama-server|openai")
	fl.StringVar(&f.modelName, "model-name", "", "Model name reported by /api/v1/status")
	fl.StringVar(&f.modelPath, "model-path", "", "GGUF file, or directory scanned for *.gguf (llama backend)")
	fl.StringVar(&f.serverURL, "server-url", "", "llama.cpp server or OpenAI-compatible base URL")
	fl.BoolVar(&f.preload, "preload", false, "Load the model at startup instead of on the first request")
	fl.IntVar(&f.retryMS, "load-retry-interval-ms", 0, "Minimum milliseconds between load retries after a failure (0 = every request)")
	return cmd
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cmd *cobra.Command, f *serveFlags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("addr") { cfg.Addr = f.addr }
	if changed("log-level") { cfg.LogLevel = f.logLevel }
	if changed("log-format") { cfg.LogFormat = f.logFormat }
	if changed("backend") { cfg.Model.Backend = f.backend }
	if changed("model-name") { cfg.Model.Name = f.modelName }
	if changed("model-path") { cfg.Model.Path = f.modelPath }
	if changed("server-url") { cfg.Model.ServerURL = f.serverURL }
	if changed("preload") { cfg.Preload = f.preload }
	if changed("load-retry-interval-ms") {
		ms := f.retryMS
		cfg.LoadRetryIntervalMS = &ms
	}
}

// app is the wired service graph.
type app struct {
	mgr     *manager.Manager
	handler http.Handler
}

// newApp builds the backend loader, the model manager, the service and the
// HTTP mux from cfg.
func newApp(cfg config.Config, log zerolog.Logger) (*app, error) {
	loader, err := backend.New(backend.Config{
		Kind:           cfg.Model.Backend,
		Name:           cfg.Model.Name,
		Path:           cfg.Model.Path,
		ContextSize:    cfg.Model.ContextSize,
		Threads:        cfg.Model.Threads,
		ServerURL:      cfg.Model.ServerURL,
		APIKey:         cfg.Model.APIKey,
		RemoteModel:    cfg.Model.RemoteModel,
		RequestTimeout: cfg.Model.RequestTimeout(),
		PromptTemplate: cfg.Model.PromptTemplate,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("build backend: %w", err)
	}
	mgr := manager.New(manager.Config{
		Name:          cfg.Model.Name,
		Loader:        loader,
		RetryInterval: cfg.RetryInterval(),
		Logger:        &log,
	})

	counter, err := tokens.NewCounter()
	if err != nil {
		log.Warn().Err(err).Msg("tokenizer unavailable; input truncation disabled")
		counter = nil
	}
	svc := service.New(mgr, service.Config{
		MaxInputTokens: cfg.InputTokenLimit(),
		Tokens:         counter,
		Logger:         &log,
	})

	httpapi.SetLogger(log)
	httpapi.SetRequestLogLevel(cfg.RequestLog)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetMinTextChars(cfg.MinTextChars)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.Origins, cfg.CORS.Methods, cfg.CORS.Headers)
	return &app{mgr: mgr, handler: httpapi.NewMux(svc)}, nil
}

// serve runs the HTTP server until ctx is done, then shuts down gracefully
// and releases the model.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.mgr.Close(); err != nil {
			log.Error().Err(err).Msg("release model")
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("backend", cfg.Model.Backend).
			Str("model", cfg.Model.Name).
			Bool("llama_built", backend.LlamaBuilt()).
			Msg("summaryd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if cfg.Preload {
		log.Info().Msg("preloading model")
		a.mgr.Warmup()
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
