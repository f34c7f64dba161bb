//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of hdx-scraper-gcf.
//
// hdx-scraper-gcf is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// hdx-scraper-gcf is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with hdx-scraper-gcf. If not, see https://www.gnu.org/licenses/.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/OCHA-DAP/hdx-scraper-gcf/catalog"
	"github.com/OCHA-DAP/hdx-scraper-gcf/config"
	"github.com/OCHA-DAP/hdx-scraper-gcf/output"
	"github.com/OCHA-DAP/hdx-scraper-gcf/publish"
	"github.com/OCHA-DAP/hdx-scraper-gcf/readers"
	"github.com/OCHA-DAP/hdx-scraper-gcf/scraper"
)

const lookup = "hdx-scraper-gcf"

var args struct {
	configPath string
	staticPath string
	save       bool
	useSaved   bool
	savedDir   string
	outputDir  string
}

var Cmd = &cobra.Command{
	Use:   lookup,
	Short: "Generate the Green Climate Fund datasets",
	Long: "Fetch funded activities and readiness programmes from the GCF API, derive the " +
		"activities, countries, entities and readiness tables and publish them with one " +
		"activities dataset per country.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	Cmd.Flags().StringVar(&args.configPath, "config", filepath.Join("config", "project_configuration.yaml"), "project configuration file")
	Cmd.Flags().StringVar(&args.staticPath, "static", filepath.Join("config", "hdx_dataset_static.yaml"), "static dataset metadata file")
	Cmd.Flags().BoolVar(&args.save, "save", false, "save downloaded data")
	Cmd.Flags().BoolVar(&args.useSaved, "use-saved", false, "use saved data instead of downloading")
	Cmd.Flags().StringVar(&args.savedDir, "saved-dir", "saved_data", "directory for saved data")
	Cmd.Flags().StringVar(&args.outputDir, "output", "", "output directory, overrides output.dir")

	fs := flag.NewFlagSet(lookup, flag.ExitOnError)
	klog.InitFlags(fs)
	Cmd.PersistentFlags().AddGoFlagSet(fs)
}

func main() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, argv []string) error {
	ctx := klog.NewContext(cmd.Context(), klog.Background())
	log := klog.FromContext(ctx)
	defer klog.Flush()

	buildInfo, _ := debug.ReadBuildInfo()
	version := "(devel)"
	if buildInfo != nil {
		version = buildInfo.Main.Version
	}
	log.Info("starting "+lookup, "version", version)

	cfg, err := config.Load(args.configPath)
	if err != nil {
		return err
	}
	if args.outputDir != "" {
		cfg.Output.Dir = args.outputDir
	}
	static, err := catalog.LoadStatic(args.staticPath)
	if err != nil {
		return err
	}
	formats, err := cfg.Formats()
	if err != nil {
		return err
	}

	location, err := newLocation(ctx, cfg)
	if err != nil {
		return err
	}
	cat, err := newCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Close(context.WithoutCancel(ctx)); err != nil {
			log.Error(err, "closing catalog")
		}
	}()

	fallbackDir := filepath.Join(os.TempDir(), lookup)
	retriever := readers.NewRetriever(newFetcher(cfg), readers.RetrieverOptions{
		SavedDir:    args.savedDir,
		FallbackDir: fallbackDir,
		Save:        args.save,
		UseSaved:    args.useSaved,
	})

	pipeline := scraper.New(cfg, static,
		scraper.NewSource(retriever, cfg.BaseURL),
		publish.NewPublisher(location, cat, publish.WithFormats(formats...)))

	summary, err := pipeline.Run(ctx)
	if summary != nil {
		for _, h := range summary.Datasets {
			log.V(1).Info("dataset", "name", h.Name, "id", h.ID, "resources", len(h.Resources))
		}
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func newFetcher(cfg *config.Config) *readers.HTTPFetcher {
	var opts []readers.FetcherOptionHTTP
	if cfg.Fetch.RetryAttempts > 0 {
		opts = append(opts, readers.WithHTTPRetries(cfg.Fetch.RetryAttempts, cfg.Fetch.RetryDelay()))
	}
	if t := cfg.Fetch.Timeout(); t > 0 {
		opts = append(opts, readers.WithHTTPTimeout(t))
	}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, readers.WithHTTPUserAgent(cfg.Fetch.UserAgent))
	}
	return readers.NewHTTPFetcher(opts...)
}

func newLocation(ctx context.Context, cfg *config.Config) (output.Location, error) {
	if s3 := cfg.Output.S3; s3 != nil {
		return output.NewS3Location(ctx, output.S3Options{
			Bucket:          s3.Bucket,
			Prefix:          s3.Prefix,
			Region:          s3.Region,
			Endpoint:        s3.Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
	}
	return output.FileLocation{Dir: cfg.Output.Dir}, nil
}

func newCatalog(ctx context.Context, cfg *config.Config) (catalog.Catalog, error) {
	c := cfg.Catalog
	switch c.Backend {
	case config.BackendPostgres:
		return catalog.NewPostgresCatalog(ctx, catalog.WithPostgresDSN(c.DSN))
	case config.BackendMongo:
		return catalog.NewMongoCatalog(ctx, catalog.MongoCatalogOptions{
			URI:        c.DSN,
			Database:   c.Database,
			Collection: c.Collection,
		})
	default:
		return &catalog.FileCatalog{Dir: c.Path}, nil
	}
}
