package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sitemapgen/internal/config"
	"sitemapgen/internal/report"
	"sitemapgen/internal/validator"
)

// ErrInvalidSitemaps is returned by inspect when any file fails validation.
var ErrInvalidSitemaps = errors.New("one or more sitemaps are invalid")

// ErrUnsafeFileName is returned by split when a rendered file name would leave the output directory.
var ErrUnsafeFileName = errors.New("unsafe sitemap file name")

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Out string `short:"o" help:"Write the sitemap to this file instead of stdout" type:"path"`
}

func (c *GenerateCmd) Run(g *Global, root *CLI) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	startTime := time.Now()

	s.log.Info("Generating sitemap", "base_url", s.cfg.Sitemap.BaseURL, "split", s.cfg.Sitemap.SplitByType)

	out, err := s.plugin.Generate(ctx, s.fetcher)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	if c.Out == "" {
		if _, err := fmt.Fprint(g.Stdout, out); err != nil {
			return err
		}
	} else {
		if err := writeFile(c.Out, out); err != nil {
			return err
		}

		s.log.Info("Sitemap written", "path", c.Out, "bytes", len(out))
	}

	s.log.Info("Generation complete", "duration", time.Since(startTime))

	return root.close(s)
}

// SplitCmd implements the 'split' command.
type SplitCmd struct {
	OutDir string `name:"out-dir" short:"o" help:"Override output.dir" type:"path"`
	Report bool   `help:"Print a markdown summary of the written files"`
}

func (c *SplitCmd) Run(g *Global, root *CLI) error {
	s, err := root.open(g)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	dir := s.cfg.Output.Dir
	if c.OutDir != "" {
		dir = c.OutDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	startTime := time.Now()

	s.log.Info("Generating split sitemaps", "base_url", s.cfg.Sitemap.BaseURL, "output", dir)

	res, err := s.plugin.GenerateSplit(ctx, s.fetcher)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	for _, f := range res.Sitemaps {
		if !filepath.IsLocal(f.Name) || filepath.Base(f.Name) != f.Name {
			return fmt.Errorf("%w: %q", ErrUnsafeFileName, f.Name)
		}

		if err := writeFile(filepath.Join(dir, f.Name), f.XML); err != nil {
			return err
		}

		s.log.Debug("Sitemap written", "file", f.Name, "urls", f.URLs)
	}

	indexName := s.cfg.Output.IndexName
	if err := writeFile(filepath.Join(dir, indexName), res.Index); err != nil {
		return err
	}

	s.log.Info("Split generation complete",
		"files", len(res.Sitemaps)+1,
		"duration", time.Since(startTime))

	if c.Report {
		if _, err := fmt.Fprint(g.Stdout, report.Summary(report.FromSplit(res, indexName))); err != nil {
			return err
		}
	}

	return root.close(s)
}

// InspectCmd implements the 'inspect' command. It does not read the configuration.
type InspectCmd struct {
	Files []string `arg:"" name:"file" help:"Sitemap or sitemap index files" type:"path"`
}

func (c *InspectCmd) Run(g *Global, _ *CLI) error {
	entries := make([]report.Entry, 0, len(c.Files))
	invalid := 0

	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		res, err := validator.Validate(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		name := filepath.Base(path)
		entries = append(entries, report.FromValidation(name, res))

		if !res.IsValid {
			invalid++
		}

		for _, e := range res.Errors {
			fmt.Fprintf(g.Stderr, "❌ %s: %v\n", name, e)
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(g.Stderr, "⚠️  %s: %s\n", name, w)
		}
	}

	if _, err := fmt.Fprint(g.Stdout, report.Summary(entries)); err != nil {
		return err
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidSitemaps, invalid, len(c.Files))
	}

	return nil
}

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (c *InitCmd) Run(g *Global, root *CLI) error {
	if _, err := os.Stat(root.Config); err == nil && !c.Force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", root.Config)
	}

	if err := config.Default().SaveConfig(root.Config); err != nil {
		return err
	}

	fmt.Fprintf(g.Stdout, "✅ Configuration written to %s\n", root.Config)

	return nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
