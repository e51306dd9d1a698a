package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"gasdoc/internal/app"
	"gasdoc/internal/config"
	"gasdoc/internal/domain"
	"gasdoc/internal/export"
	_ "gasdoc/internal/extractor/claude"
	_ "gasdoc/internal/extractor/gemini"
	_ "gasdoc/internal/extractor/openai"
	_ "gasdoc/internal/extractor/vertex"
	"gasdoc/internal/logger"
	"gasdoc/internal/port"
	"gasdoc/internal/service"
	s3storage "gasdoc/internal/storage/s3"
)

const usage = `usage: gasdoc <command> [flags] [args]

commands:
  types                                    list registered document types
  classify <file>                          classify a PDF or text file
  process [-type t] <file>                 classify (unless -type), extract and project one file
  batch [-type t] [-out dest] <dir|s3://bucket/prefix>
                                           process every document; dest is file.csv, file.xlsx
                                           or s3://bucket/key.(csv|xlsx); default prints JSON lines
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if _, perr := fmt.Fprintf(os.Stderr, "gasdoc: %v\n", err); perr != nil {
			fmt.Printf("gasdoc: %v\n", err)
		}
		os.Exit(1)
	}
}

// cli carries the wired pipeline for one invocation.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	zl, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	c := &cli{cfg: cfg, logger: zl, out: stdout}
	switch args[0] {
	case "types":
		return c.types()
	case "classify":
		return c.classify(ctx, args[1:])
	case "process":
		return c.process(ctx, args[1:])
	case "batch":
		return c.batch(ctx, args[1:])
	case "help", "-h", "--help":
		_, err := io.WriteString(stdout, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

// pipeline wires the app, with S3 storage only when a command touches s3:// locations.
func (c *cli) pipeline(ctx context.Context, needS3 bool) (*app.App, error) {
	var storage port.ObjectStorage
	if needS3 {
		s, err := s3storage.NewS3Client(ctx, &c.cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		storage = s
	}
	return app.New(c.cfg, storage, nil, c.logger)
}

func (c *cli) types() error {
	a, err := c.pipeline(context.Background(), false)
	if err != nil {
		return err
	}
	for _, dt := range a.Registry.ListTypes() {
		entry, err := a.Registry.Lookup(dt)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.out, "%s\t%s\n", dt, entry.Transform.Kind()); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) classify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("classify: exactly one file is required")
	}

	a, err := c.pipeline(ctx, false)
	if err != nil {
		return err
	}
	doc, err := readFile(ctx, a.Files, fs.Arg(0))
	if err != nil {
		return err
	}
	result, err := a.Documents.Classify(ctx, *doc)
	if err != nil {
		return err
	}
	return c.printJSON(result)
}

func (c *cli) process(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	typeFlag := fs.String("type", "", "document type; skips classification")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("process: exactly one file is required")
	}
	forced, err := parseType(*typeFlag)
	if err != nil {
		return err
	}

	a, err := c.pipeline(ctx, false)
	if err != nil {
		return err
	}
	doc, err := readFile(ctx, a.Files, fs.Arg(0))
	if err != nil {
		return err
	}
	result, err := a.Documents.Process(ctx, *doc, forced)
	if err != nil {
		return err
	}
	return c.printJSON(result)
}

func (c *cli) batch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	typeFlag := fs.String("type", "", "document type applied to every document; skips classification")
	out := fs.String("out", "", "output: file.csv, file.xlsx or s3://bucket/key.(csv|xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("batch: exactly one directory or s3:// location is required")
	}
	forced, err := parseType(*typeFlag)
	if err != nil {
		return err
	}
	source := fs.Arg(0)

	a, err := c.pipeline(ctx, isS3(source) || isS3(*out))
	if err != nil {
		return err
	}

	var docs []domain.Document
	if isS3(source) {
		bucket, prefix := splitS3(source)
		docs, err = a.Files.LoadS3(ctx, bucket, prefix)
	} else {
		docs, err = a.Files.LoadDir(ctx, source)
	}
	if err != nil {
		return err
	}

	items := make([]service.BatchItem, len(docs))
	for i := range docs {
		items[i] = service.BatchItem{Document: docs[i], DocumentType: forced}
	}
	results, err := a.Batch.Run(ctx, items)
	if err != nil {
		return err
	}
	return c.writeResults(ctx, a.Files, results, *out)
}

func (c *cli) writeResults(ctx context.Context, files service.FileService, results []service.BatchResult, out string) error {
	if out == "" {
		enc := json.NewEncoder(c.out)
		for _, r := range results {
			line := struct {
				Name   string                 `json:"name"`
				Result *service.ProcessResult `json:"result,omitempty"`
				Error  string                 `json:"error,omitempty"`
			}{Name: r.Name, Result: r.Result}
			if r.Err != nil {
				line.Error = r.Err.Error()
			}
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
		return nil
	}

	format, err := export.ParseFormat(filepath.Ext(out))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	switch format {
	case export.FormatXLSX:
		err = export.WriteXLSX(&buf, results)
	default:
		err = export.WriteCSV(&buf, results)
	}
	if err != nil {
		return fmt.Errorf("writing %s export: %w", format, err)
	}

	if isS3(out) {
		bucket, key := splitS3(out)
		if _, err := files.UploadExport(ctx, bucket, key, export.ContentTypes[format], buf.Bytes()); err != nil {
			return err
		}
	} else if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	c.logger.Info("export written", zap.String("dest", out), zap.Int("documents", len(results)))
	return nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readFile(ctx context.Context, files service.FileService, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	doc, err := files.Read(ctx, service.FileInput{Name: filepath.Base(path), Size: size, Body: f})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func parseType(s string) (*domain.DocumentType, error) {
	if s == "" {
		return nil, nil
	}
	dt, err := domain.ParseDocumentType(s)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

func isS3(s string) bool {
	return strings.HasPrefix(s, "s3://")
}

// splitS3 splits s3://bucket/rest into bucket and rest.
func splitS3(uri string) (bucket, rest string) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	bucket, rest, _ = strings.Cut(trimmed, "/")
	return bucket, rest
}
