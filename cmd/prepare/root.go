package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"companymap/internal/dataset"
	"companymap/internal/env"
	"companymap/internal/logging"
	"companymap/internal/models"
	"companymap/internal/prepare"
	"companymap/internal/storage"
	"companymap/pkg/graceful"
	"companymap/pkg/location"
	"companymap/pkg/wikipedia"
)

type options struct {
	input     string
	output    string
	collation string
	geocode   bool
	wikipedia bool
	bucket    string
	key       string
	logLevel  string
	pretty    bool
}

// uploader stores the dataset and resulting layout; *storage.S3Service
// implements it.
type uploader interface {
	CreateBucket(ctx context.Context, bucket, location string) (bool, error)
	PutDataset(ctx context.Context, bucket, key string, data []byte) error
	PutLayout(ctx context.Context, bucket string, l *models.Layout) error
}

var newUploader = func(cfg env.MinIOConfig, cmd *cobra.Command, opts *options) (uploader, error) {
	logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.pretty)
	return storage.NewS3Service(cfg, logger)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Build a map layout from a companies dataset",
		Long: `Build a map layout from a companies dataset.

Companies without a usable headquarters coordinate are skipped. Companies
sharing a coordinate are spread on a small circle around it so every marker
stays visible.`,
		Example: `  prepare --input companies.json
  prepare --input companies.json --output layout.json --collation de
  prepare --input companies.json --bucket companymap --key datasets/companies.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrepare(cmd, opts)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "companies dataset JSON file (required)")
	f.StringVarP(&opts.output, "output", "o", "-", `layout output file, "-" for stdout`)
	f.StringVar(&opts.collation, "collation", "", "BCP 47 language tag for ordering collocated names (default ordinal)")
	f.BoolVar(&opts.geocode, "geocode", false, "geocode headquarters without coordinates via Nominatim")
	f.BoolVar(&opts.wikipedia, "wikipedia", false, "fill missing descriptions and images from Wikipedia")
	f.StringVar(&opts.bucket, "bucket", "", "upload the dataset and layout to this MinIO bucket")
	f.StringVar(&opts.key, "key", "", "object key for the uploaded dataset (default derived from the input name)")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level")
	f.BoolVar(&opts.pretty, "pretty", false, "human-readable logs")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runPrepare(cmd *cobra.Command, opts *options) error {
	logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.pretty)
	ctx, cancel := graceful.Context(cmd.Context(), logger)
	defer cancel()

	raw, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	companies, err := dataset.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", opts.input, err)
	}

	var enrichers prepare.Enrichers
	if opts.geocode {
		enrichers.Geocoder = location.NewClient()
	}
	if opts.wikipedia {
		enrichers.Summarizer = wikipedia.NewSummaryService(wikipedia.NewClient())
	}
	prepOpts := []prepare.Option{prepare.WithPipeline(prepare.NewCompanyPipeline(logger, enrichers))}
	if opts.collation != "" {
		tag, err := language.Parse(opts.collation)
		if err != nil {
			return fmt.Errorf("invalid collation %q: %w", opts.collation, err)
		}
		prepOpts = append(prepOpts, prepare.WithCollation(tag))
	}

	l, err := prepare.New(logger, prepOpts...).Prepare(ctx, opts.input, companies)
	if err != nil {
		return err
	}
	if err := writeLayout(cmd, opts.output, l); err != nil {
		return err
	}

	if opts.bucket == "" {
		return nil
	}
	cfg, err := env.LoadMinIO()
	if err != nil {
		return err
	}
	up, err := newUploader(cfg, cmd, opts)
	if err != nil {
		return err
	}
	if _, err := up.CreateBucket(ctx, opts.bucket, ""); err != nil {
		return err
	}
	key := opts.key
	if key == "" {
		key = datasetKey(opts.input)
	}
	if err := up.PutDataset(ctx, opts.bucket, key, raw); err != nil {
		return err
	}
	return up.PutLayout(ctx, opts.bucket, l)
}

// createOutput opens the layout destination; swapped in tests.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeLayout(cmd *cobra.Command, path string, l *models.Layout) (err error) {
	if path == "-" {
		return encodeLayout(cmd.OutOrStdout(), l)
	}
	f, err := createOutput(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output %s: %w", path, cerr)
		}
	}()
	return encodeLayout(f, l)
}

func encodeLayout(w io.Writer, l *models.Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("writing layout: %w", err)
	}
	return nil
}
