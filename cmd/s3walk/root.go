package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	s3 "github.com/vudodov/aws.s3"
	"github.com/vudodov/aws.s3/s3types"
)

// app holds the flag values and shared state of one CLI invocation.
type app struct {
	bucket          string
	prefix          string
	region          string
	endpoint        string
	accessKeyID     string
	secretAccessKey string
	sessionToken    string
	pathStyle       bool
	pageSize        int32
	concurrency     int
	timeout         time.Duration
	startAfter      string
	resumeToken     string
	metricsAddr     string
	debug           bool

	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *s3.Metrics
	server   *http.Server

	// factory overrides client construction; nil uses s3.NewClient
	factory s3types.ClientFactory

	// envErrs holds unparsable environment fallbacks by flag name
	envErrs map[string]error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "s3walk",
		Short:             "Walk the objects under an S3 prefix",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.bucket, "bucket", envString("", "S3WALK_BUCKET"), "bucket to walk [S3WALK_BUCKET]")
	f.StringVar(&a.prefix, "prefix", envString("", "S3WALK_PREFIX"), "key prefix to walk [S3WALK_PREFIX]")
	f.StringVar(&a.region, "region", envString("", "AWS_REGION", "AWS_DEFAULT_REGION"), "bucket region [AWS_REGION]")
	f.StringVar(&a.endpoint, "endpoint", envString("", "S3WALK_ENDPOINT"), "custom S3 endpoint URL [S3WALK_ENDPOINT]")
	f.BoolVar(&a.pathStyle, "path-style", a.envBool("path-style", false, "S3WALK_PATH_STYLE"), "use path-style addressing [S3WALK_PATH_STYLE]")
	f.StringVar(&a.accessKeyID, "access-key-id", envString("", "AWS_ACCESS_KEY_ID"), "static access key id [AWS_ACCESS_KEY_ID]")
	f.StringVar(&a.secretAccessKey, "secret-access-key", envString("", "AWS_SECRET_ACCESS_KEY"),
		"static secret access key [AWS_SECRET_ACCESS_KEY]")
	f.StringVar(&a.sessionToken, "session-token", envString("", "AWS_SESSION_TOKEN"), "session token [AWS_SESSION_TOKEN]")
	f.Int32Var(&a.pageSize, "page-size", int32(a.envInt("page-size", 1000, 32, "S3WALK_PAGE_SIZE")), "keys per listing page, 1-1000 [S3WALK_PAGE_SIZE]")
	f.IntVar(&a.concurrency, "concurrency", int(a.envInt("concurrency", 5, strconv.IntSize, "S3WALK_CONCURRENCY")), "operations run at once by concurrent commands [S3WALK_CONCURRENCY]")
	f.DurationVar(&a.timeout, "timeout", 0, "per-request HTTP timeout (0 disables)")
	f.StringVar(&a.startAfter, "start-after", "", "start listing after this key")
	f.StringVar(&a.resumeToken, "resume-token", "", "resume from the continuation token printed by an interrupted walk")
	f.StringVar(&a.metricsAddr, "metrics-addr", envString("", "S3WALK_METRICS_ADDR"),
		"serve /metrics and /livez on this address while walking [S3WALK_METRICS_ADDR]")
	f.BoolVar(&a.debug, "debug", a.envBool("debug", false, "S3WALK_DEBUG"), "enable debug logging [S3WALK_DEBUG]")

	root.AddCommand(
		newLsCmd(a),
		newDuCmd(a),
		newDigestCmd(a),
		newSniffCmd(a),
	)
	return root
}

// setup configures logging and metrics before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	for name, err := range a.envErrs {
		if !cmd.Flags().Changed(name) {
			return err
		}
	}

	level := zerolog.InfoLevel
	if a.debug {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := s3.NewMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	a.metrics = metrics

	if a.metricsAddr != "" {
		srv, err := startMetricsServer(a.metricsAddr, a.registry, a.log)
		if err != nil {
			return err
		}
		a.server = srv
	}
	return nil
}

// shutdown stops the metrics server, if one was started.
func (a *app) shutdown() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Warn().Err(err).Msg("metrics server shutdown")
	}
	a.server = nil
}

// walk runs a walk over the configured bucket and prefix and logs a summary.
func (a *app) walk(cmd *cobra.Command, concurrent bool, operate s3.OperateFunc) (*s3types.WalkResult, error) {
	if a.bucket == "" {
		return nil, fmt.Errorf("a bucket is required (--bucket or S3WALK_BUCKET)")
	}

	bucket := s3types.Bucket{
		Name:            a.bucket,
		Region:          a.region,
		AccessKeyID:     a.accessKeyID,
		SecretAccessKey: a.secretAccessKey,
		SessionToken:    a.sessionToken,
	}

	opts := []s3types.WalkOption{
		s3.WithPageSize(a.pageSize),
		s3.WithConcurrency(a.concurrency),
		s3.WithStartAfter(a.startAfter),
		s3.WithContinuationToken(a.resumeToken),
		s3.WithMetrics(a.metrics),
		s3.WithClientOptions(a.clientOptions()...),
	}
	if a.factory != nil {
		opts = append(opts, s3.WithClientFactory(a.factory))
	}
	if a.debug {
		opts = append(opts, s3.WithLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
			&slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	onFailure := func(page *s3types.Page) {
		a.log.Error().
			Str("bucket", a.bucket).
			Int("page", page.Number).
			Int("status", page.StatusCode).
			Str("request_id", page.RequestID).
			Err(page.Err).
			Msg("listing page failed")
	}

	walker := s3.NewWalker(opts...)
	run := walker.Walk
	if concurrent {
		run = walker.WalkConcurrent
	}

	result, err := run(cmd.Context(), bucket, a.prefix, operate, onFailure)
	if result != nil {
		a.log.Info().
			Str("bucket", a.bucket).
			Str("prefix", a.prefix).
			Int("pages", result.Pages).
			Int("visited", result.Visited).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Dur("duration", result.Duration).
			Msg("walk complete")

		if err != nil && result.Mark.HasMore && result.Mark.ContinuationToken != "" {
			a.log.Info().Str("resume_token", result.Mark.ContinuationToken).Msg("walk stopped early")
		}
		for _, objErr := range result.Errors {
			a.log.Debug().Str("key", objErr.Key).Err(objErr.Err).Msg("operation failed")
		}
	}
	return result, err
}

func (a *app) clientOptions() []s3types.Option {
	opts := []s3types.Option{s3.WithForcePathStyle(a.pathStyle)}
	if a.endpoint != "" {
		opts = append(opts, s3.WithEndpoint(a.endpoint))
	}
	if a.timeout > 0 {
		opts = append(opts, s3.WithTimeout(a.timeout))
	}
	return opts
}

// envString returns the first non-empty environment variable among keys, or def.
func envString(def string, keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return def
}

// envInt parses key as a base-10 integer of the given bit size. An unset
// variable yields def; an unparsable or out-of-range one yields def and is
// reported by setup unless the flag is given explicitly.
func (a *app) envInt(flag string, def int64, bitSize int, key string) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, bitSize)
	if err != nil {
		a.envError(flag, key, err)
		return def
	}
	return v
}

func (a *app) envBool(flag string, def bool, key string) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		a.envError(flag, key, err)
		return def
	}
	return v
}

func (a *app) envError(flag, key string, err error) {
	if a.envErrs == nil {
		a.envErrs = make(map[string]error)
	}
	a.envErrs[flag] = fmt.Errorf("invalid %s: %w", key, err)
}
