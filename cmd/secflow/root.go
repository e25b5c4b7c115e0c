package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/amp-labs/secflow/build"
	"github.com/amp-labs/secflow/config"
	"github.com/amp-labs/secflow/logger"
	"github.com/amp-labs/secflow/pipeline"
	"github.com/amp-labs/secflow/secapi"
	"github.com/amp-labs/secflow/shutdown"
	"github.com/amp-labs/secflow/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const readHeaderTimeout = 5 * time.Second

// app is the state shared by every command of one invocation.
type app struct {
	envFile  string
	logLevel string
	logJSON  bool

	cfg      config.Config
	handler  *shutdown.Handler
	executor secapi.Executor
}

// run executes the command line args. Resources set up for the command are released
// whether it succeeds or not.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	a.teardown()

	return err
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "secflow",
		Short: "Fetch SEC submissions documents",
		Long: `secflow validates CIKs and fetches their submissions documents from the SEC,
one by one or as queued batches.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "File with environment variables to load first")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	flags.BoolVar(&a.logJSON, "log-json", false, "Log as JSON; overrides LOG_JSON")

	root.AddCommand(
		newExtractCmd(a),
		newEnqueueCmd(a),
		newWorkerCmd(a),
		newTopologyCmd(a),
		newVersionCmd(),
	)

	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFiles(a.envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}

	a.cfg = cfg

	ctx, handler := shutdown.SetupHandler(cmd.Context(), cfg.ShutdownWait)
	a.handler = handler
	cmd.SetContext(ctx)

	if err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: build.Current().Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		Enabled:        cfg.OTLPEnabled,
		Timeout:        cfg.OTLPTimeout,
	}); err != nil {
		return err
	}

	handler.BeforeShutdown("telemetry", telemetry.Shutdown)

	opts := []logger.Option{logger.WithJSON(cfg.LogJSON), logger.WithOutput(cmd.ErrOrStderr())}
	if telemetry.Enabled() {
		opts = append(opts, logger.WithLoggerProvider(telemetry.LoggerProvider()))
	}

	if _, err := logger.ConfigureLogging(cmd.Name(), cfg.LogLevel, opts...); err != nil {
		return err
	}

	if cfg.DNSRefresh > 0 {
		go secapi.RefreshDNS(ctx, cfg.DNSRefresh)
	}

	if cfg.MetricsAddr != "" {
		a.serveMetrics(ctx)
	}

	return nil
}

func (a *app) teardown() {
	if a.handler == nil {
		return
	}

	a.handler.Shutdown()
	<-a.handler.Done()
}

func (a *app) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Get(ctx).InfoContext(ctx, "Serving metrics", "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get(ctx).ErrorContext(ctx, "Metrics server failed", "error", err)
		}
	}()

	a.handler.BeforeShutdown("metrics", srv.Shutdown)
}

// runner builds a pipeline runner from the configuration. One transport is shared
// by every client the runner creates.
func (a *app) runner(opts ...pipeline.Option) *pipeline.Runner {
	base := []pipeline.Option{
		pipeline.WithUserAgent(a.cfg.UserAgent),
		pipeline.WithBaseURL(a.cfg.BaseURL),
		pipeline.WithClientOptions(
			secapi.WithTransport(secapi.NewTransport()),
			secapi.WithTimeout(a.cfg.RequestTimeout)),
		pipeline.WithRetries(a.cfg.MaxRetries),
		pipeline.WithRetryInterval(a.cfg.RetryInterval),
		pipeline.WithRetryMaxElapsed(a.cfg.RetryMaxElapsed),
		pipeline.WithWorkers(a.cfg.Workers),
		pipeline.WithPollTimeout(a.cfg.PollTimeout),
	}

	if a.executor != nil {
		base = append(base, pipeline.WithExecutor(a.executor))
	}

	return pipeline.NewRunner(append(base, opts...)...)
}
