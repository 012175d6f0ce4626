package main

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"nycasp-bot/internal/config"
	"nycasp-bot/internal/domain/entity"
	"nycasp-bot/internal/infra/calendar"
	"nycasp-bot/internal/infra/notifier"
	"nycasp-bot/internal/observability/logging"
	"nycasp-bot/internal/observability/metrics"
	"nycasp-bot/internal/usecase/status"
)

// rootOptions holds the flags shared by the root command and worker.
type rootOptions struct {
	configPath string
	source     string
	dryRun     bool
	tomorrow   bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nycasp",
		Short: "Post NYC Alternate Side Parking status to Bluesky",
		Long: `Fetches the day's NYC calendar, rewrites the Alternate Side Parking entry
into a short message, prints it, and posts it to Bluesky.

Credentials come from the environment: API_KEY_311 for the subscription source,
BSKY_USERNAME and BSKY_PASSWORD for posting.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts, out)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional YAML file with non-secret settings")
	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "calendar source: subscription or portal")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "print the message without posting")
	cmd.Flags().BoolVar(&opts.tomorrow, "tomorrow", false, "report tomorrow's status")

	cmd.AddCommand(newWorkerCmd(opts, out))
	return cmd
}

// runOnce reports once for today or tomorrow.
func runOnce(cmd *cobra.Command, opts *rootOptions, out io.Writer) error {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.LoadBotConfig(opts.configPath, logger, config.WithSource(opts.source))
	if err != nil {
		return err
	}

	svc, err := newStatusService(cfg, opts.dryRun, out)
	if err != nil {
		return err
	}

	ctx, logger := logging.WithRunID(cmd.Context(), logger, logging.NewRunID())
	target := entity.NewTargetDate(time.Now().In(cfg.Location()), opts.tomorrow)
	logger.Info("status run started",
		slog.String("source", cfg.Source),
		slog.String("mode", target.Mode()),
		slog.String("date", target.ISO()),
		slog.Bool("dry_run", opts.dryRun))

	res, err := svc.Run(ctx, target)
	if err != nil {
		return err
	}
	metrics.RecordMessageLength(res.Message)
	return nil
}

// newStatusService wires the configured source and publisher into a Service.
func newStatusService(cfg *config.BotConfig, dryRun bool, out io.Writer) (*status.Service, error) {
	client := createHTTPClient(cfg.HTTPTimeout)

	source, err := calendar.NewSource(cfg, client)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(cfg, dryRun, client)
	if err != nil {
		return nil, err
	}

	return status.NewService(source, publisher, cfg.Category, out), nil
}

// newPublisher returns the dry-run publisher, or Bluesky followed by any
// configured webhook mirrors.
func newPublisher(cfg *config.BotConfig, dryRun bool, client *http.Client) (status.Publisher, error) {
	if dryRun {
		return notifier.NewDryRunPublisher(), nil
	}

	bluesky, err := notifier.NewBlueskyPublisher(notifier.BlueskyConfig{
		Host:       cfg.Bluesky.Host,
		Identifier: cfg.Bluesky.Identifier,
		Password:   cfg.Bluesky.Password,
		Timeout:    cfg.HTTPTimeout,
	}, client)
	if err != nil {
		return nil, fmt.Errorf("bluesky publisher: %w", err)
	}

	var mirrors []notifier.Mirror
	if u := cfg.Mirrors.DiscordWebhookURL; u != "" {
		mirrors = append(mirrors, notifier.Mirror{
			Name:      "discord",
			Publisher: notifier.NewDiscordPublisher(notifier.DiscordConfig{WebhookURL: u, Timeout: cfg.HTTPTimeout}),
		})
	}
	if u := cfg.Mirrors.SlackWebhookURL; u != "" {
		mirrors = append(mirrors, notifier.Mirror{
			Name:      "slack",
			Publisher: notifier.NewSlackPublisher(notifier.SlackConfig{WebhookURL: u, Timeout: cfg.HTTPTimeout}),
		})
	}
	if len(mirrors) == 0 {
		return bluesky, nil
	}
	return notifier.NewChainPublisher(bluesky, mirrors...), nil
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}
