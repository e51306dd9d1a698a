package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gasdoc/internal/domain"
)

// BatchItem is one document queued for processing, with an optional forced type.
type BatchItem struct {
	Document     domain.Document
	DocumentType *domain.DocumentType
}

// BatchResult holds the outcome for one BatchItem. Err is set when the document failed;
// Result may still carry the classification in that case.
type BatchResult struct {
	Name   string
	Result *ProcessResult
	Err    error
}

// BatchProcessor runs many documents through a DocumentService concurrently.
type BatchProcessor struct {
	docService  DocumentService
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a new BatchProcessor. A concurrency below 1 runs documents one at a time.
func NewBatchProcessor(docService DocumentService, concurrency int, logger *zap.Logger) *BatchProcessor {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{docService: docService, concurrency: concurrency, logger: logger}
}

// Run processes items and returns one result per item, in input order. Per-document failures
// are captured in the results; only cancellation of ctx fails the batch as a whole.
func (p *BatchProcessor) Run(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	runID := uuid.New().String()
	log := p.logger.With(zap.String("run_id", runID))
	log.Info("batch started", zap.Int("documents", len(items)), zap.Int("concurrency", p.concurrency))
	start := time.Now()

	results := make([]BatchResult, len(items))
	for i, item := range items {
		results[i].Name = item.Document.Name
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i := range items {
		item := items[i]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.docService.Process(gctx, item.Document, item.DocumentType)
			results[i].Result, results[i].Err = res, err
			if err != nil {
				log.Warn("document failed", zap.String("document", item.Document.Name), zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("batch finished",
		zap.Int("documents", len(items)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}
