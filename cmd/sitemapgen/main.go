// Package main provides the sitemapgen command-line tool for rendering sitemaps from a Sanity dataset.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"sitemapgen/internal/config"
	"sitemapgen/internal/logger"
	"sitemapgen/internal/metrics"
	"sitemapgen/internal/plugin"
	"sitemapgen/internal/sanity"
	"sitemapgen/internal/sitemap"
)

// Global carries per-process state into every command.
type Global struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Registry *plugin.Registry
	RunID    string
}

// CLI definition & global flags.
type CLI struct {
	Config      string `short:"c" help:"Configuration file path" default:"sitemapgen.yaml" type:"path"`
	EnvFile     string `name:"env-file" help:"Dotenv file loaded before the configuration" default:".env"`
	LogLevel    string `name:"log-level" help:"Override logging.level (debug, info, warn, error)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file after the run" type:"path"`

	Generate GenerateCmd `cmd:"" help:"Render a single sitemap (or the index when split_by_type is set)"`
	Split    SplitCmd    `cmd:"" help:"Render one sitemap per document type plus an index into the output directory"`
	Inspect  InspectCmd  `cmd:"" help:"Validate sitemap or sitemap index files and print a summary"`
	Init     InitCmd     `cmd:"" help:"Write a starter configuration file"`
}

func main() {
	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("sitemapgen"),
		kong.Description("Generate sitemaps.org XML from Sanity documents."),
		kong.UsageOnError(),
	)

	if err := run(kctx, &cli, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context, cli *CLI, stdout, stderr io.Writer) error {
	if err := godotenv.Load(cli.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", cli.EnvFile, err)
	}

	g := &Global{
		Stdout:   stdout,
		Stderr:   stderr,
		Registry: plugin.NewRegistry(),
		RunID:    uuid.NewString(),
	}

	return kctx.Run(g)
}

// session is the state shared by commands that talk to the CMS.
type session struct {
	cfg       *config.Config
	log       *logger.Logger
	collector *metrics.Collector
	fetcher   sitemap.Fetcher
	plugin    *plugin.Plugin
}

// open loads configuration and wires the client, fetcher, metrics and plugin.
func (c *CLI) open(g *Global) (*session, error) {
	cfg, err := config.LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if c.LogLevel != "" {
		level = c.LogLevel
	}

	log := logger.New(g.Stderr, level, cfg.Logging.Format).With("run_id", g.RunID)
	log.Debug("Configuration loaded", "config", cfg.String())

	client, err := sanity.NewHTTPClient(cfg.ClientConfig(), log)
	if err != nil {
		return nil, err
	}

	opts, err := cfg.SitemapOptions()
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	opts.Recorder = collector
	opts.Logger = log

	p, err := plugin.Register(g.Registry, opts)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:       cfg,
		log:       log,
		collector: collector,
		fetcher:   sanity.NewDocumentFetcher(client, log, cfg.QueryFields()...),
		plugin:    p,
	}, nil
}

// close flushes metrics when a metrics file was requested.
func (c *CLI) close(s *session) error {
	if c.MetricsFile == "" {
		return nil
	}

	if err := s.collector.WriteTextfile(c.MetricsFile); err != nil {
		return err
	}

	s.log.Debug("Metrics written", "path", c.MetricsFile)

	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
