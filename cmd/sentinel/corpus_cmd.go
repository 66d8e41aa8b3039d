package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/plantops/sentinel/pkg/corpus"
)

func runCorpusCmd(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: sentinel corpus <build|show> [flags]")
		return 2
	}
	switch args[0] {
	case "build":
		return runCorpusBuild(args[1:], stdout, stderr)
	case "show":
		return runCorpusShow(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown corpus subcommand: %s\n", args[0])
		return 2
	}
}

// runCorpusBuild fits the retrieval index from regulation packs and
// persists it, replacing any previous corpus in the store.
func runCorpusBuild(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("corpus build", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		packDir  string
		dbPath   string
		driver   string
		dsn      string
		version  string
		s3Bucket string
		s3Region string
		s3Prefix string
		s3URL    string
	)
	cmd.StringVar(&packDir, "packs", "data/regulations", "Directory of pack_*.yaml files")
	cmd.StringVar(&dbPath, "db", "corpus.db", "SQLite corpus database path")
	cmd.StringVar(&driver, "driver", "sqlite", "Store driver: sqlite or postgres")
	cmd.StringVar(&dsn, "dsn", "", "Postgres DSN (with --driver postgres)")
	cmd.StringVar(&version, "version", "", "Corpus version tag (default: today)")
	cmd.StringVar(&s3Bucket, "s3-bucket", "", "Fetch packs from this S3 bucket instead of --packs")
	cmd.StringVar(&s3Region, "s3-region", "us-east-1", "S3 region")
	cmd.StringVar(&s3Prefix, "s3-prefix", "", "S3 key prefix")
	cmd.StringVar(&s3URL, "s3-endpoint", "", "Custom S3 endpoint (MinIO, LocalStack)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if version == "" {
		version = time.Now().UTC().Format("2006-01-02")
	}

	ctx := context.Background()

	var src corpus.PackSource = corpus.DirSource{Dir: packDir}
	if s3Bucket != "" {
		s3src, err := corpus.NewS3Source(ctx, corpus.S3SourceConfig{
			Bucket:   s3Bucket,
			Region:   s3Region,
			Prefix:   s3Prefix,
			Endpoint: s3URL,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Error: s3 source: %v\n", err)
			return 1
		}
		src = s3src
	}

	entries, err := corpus.LoadEntries(src)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading packs: %v\n", err)
		return 1
	}

	index, err := corpus.BuildIndex(entries, version)
	if err != nil {
		fmt.Fprintf(stderr, "Error building index: %v\n", err)
		return 1
	}

	store, err := openCorpusStore(driver, dbPath, dsn)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening store: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	if err := store.Save(ctx, index); err != nil {
		fmt.Fprintf(stderr, "Error saving corpus: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Corpus built: %d rules, %d terms, version %s\n",
		index.Len(), len(index.Vocabulary().Terms), index.Version())
	return 0
}

func runCorpusShow(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("corpus show", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		dbPath string
		driver string
		dsn    string
	)
	cmd.StringVar(&dbPath, "db", "corpus.db", "SQLite corpus database path")
	cmd.StringVar(&driver, "driver", "sqlite", "Store driver: sqlite or postgres")
	cmd.StringVar(&dsn, "dsn", "", "Postgres DSN (with --driver postgres)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	store, err := openCorpusStore(driver, dbPath, dsn)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening store: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	index, err := store.Load(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "Error loading corpus: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Version:  %s\n", index.Version())
	fmt.Fprintf(stdout, "Rules:    %d\n", index.Len())
	fmt.Fprintf(stdout, "Terms:    %d\n", len(index.Vocabulary().Terms))
	for _, r := range index.Rules() {
		fmt.Fprintf(stdout, "  %-14s %-10s %s\n", r.RuleID, r.Source, r.Category)
	}
	return 0
}

func openCorpusStore(driver, dbPath, dsn string) (corpusStore, error) {
	if driver == "postgres" {
		return corpus.OpenPostgresStore(dsn)
	}
	return corpus.OpenSQLiteStore(dbPath)
}
