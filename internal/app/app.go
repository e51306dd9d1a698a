package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"gasdoc/internal/classifier"
	"gasdoc/internal/config"
	"gasdoc/internal/extraction"
	"gasdoc/internal/extractor"
	"gasdoc/internal/metrics"
	"gasdoc/internal/port"
	"gasdoc/internal/schema"
	"gasdoc/internal/service"
)

// App is the wired pipeline shared by the HTTP server and the CLI.
type App struct {
	Registry  *schema.Registry
	Extractor port.StructuredExtractor
	Files     service.FileService
	Documents service.DocumentService
	Batch     *service.BatchProcessor
}

// New wires the registry, extractor, classifier and services described by cfg.
// storage and m may be nil.
func New(cfg *config.Config, storage port.ObjectStorage, m *metrics.Metrics, logger *zap.Logger) (*App, error) {
	ext, err := extractor.New(&cfg.Extractor, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing extractor: %w", err)
	}
	source, err := SignalSource(cfg.Classifier.SignalSource, ext)
	if err != nil {
		return nil, err
	}

	registry := schema.Default()
	cls := classifier.New(source, classifier.WithTimeout(time.Duration(cfg.Classifier.TimeoutSecs)*time.Second))
	dispatcher := extraction.NewDispatcher(registry, ext, extraction.WithTimeout(cfg.Pipeline.ExtractTimeout()))
	docs := service.NewDocumentService(registry, cls, dispatcher, m, logger)

	return &App{
		Registry:  registry,
		Extractor: ext,
		Files:     service.NewFileService(storage, &cfg.Pipeline, logger),
		Documents: docs,
		Batch:     service.NewBatchProcessor(docs, cfg.Pipeline.BatchConcurrency, logger),
	}, nil
}

// SignalSource picks the classifier's evidence source. "auto" scans text locally and
// sends PDFs to the extractor.
func SignalSource(mode string, ext port.StructuredExtractor) (port.SignalSource, error) {
	switch mode {
	case "keyword":
		return classifier.NewKeywordScanner(), nil
	case "extractor":
		return ext, nil
	case "", "auto":
		return classifier.NewContentRouter(classifier.NewKeywordScanner(), ext), nil
	default:
		return nil, fmt.Errorf("unknown classifier signal source: %s", mode)
	}
}

// ExtractorReady reports whether the primary provider has the credentials it needs.
func ExtractorReady(cfg *config.ExtractorConfig) error {
	primary := cfg.PrimaryConfig()
	switch {
	case primary.Provider == "vertex" && primary.Project == "":
		return fmt.Errorf("vertex project is not configured")
	case primary.Provider != "vertex" && primary.APIKey == "":
		return fmt.Errorf("%s api key is not configured", primary.Provider)
	}
	return nil
}
