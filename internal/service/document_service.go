package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"gasdoc/internal/aggregate"
	"gasdoc/internal/classifier"
	"gasdoc/internal/domain"
	"gasdoc/internal/extraction"
	"gasdoc/internal/metrics"
	"gasdoc/internal/schema"
)

// ProcessResult is the full outcome of running one document through the pipeline.
type ProcessResult struct {
	DocumentType      domain.DocumentType            `json:"documentType"`
	Classification    *domain.ClassificationResult   `json:"classification,omitempty"`
	Output            domain.OutputRecord            `json:"output"`
	OverallConfidence float64                        `json:"overallConfidence"`
	ModelUsed         string                         `json:"modelUsed,omitempty"`
	RowIssues         []domain.SchemaValidationError `json:"rowIssues,omitempty"`
}

// DocumentService defines the classification and extraction pipeline contract.
type DocumentService interface {
	Classify(ctx context.Context, doc domain.Document) (*domain.ClassificationResult, error)
	Process(ctx context.Context, doc domain.Document, documentType *domain.DocumentType) (*ProcessResult, error)
	ListTypes() []domain.DocumentType
}

type documentService struct {
	registry   *schema.Registry
	classifier *classifier.Classifier
	dispatcher *extraction.Dispatcher
	projector  *aggregate.Projector
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewDocumentService creates a new DocumentService implementation. m may be nil.
func NewDocumentService(
	registry *schema.Registry,
	cls *classifier.Classifier,
	dispatcher *extraction.Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{
		registry:   registry,
		classifier: cls,
		dispatcher: dispatcher,
		projector:  aggregate.NewProjector(registry),
		metrics:    m,
		logger:     logger,
	}
}

func (s *documentService) Classify(ctx context.Context, doc domain.Document) (*domain.ClassificationResult, error) {
	start := time.Now()
	result, err := s.classifier.Classify(ctx, doc)
	s.metrics.ObserveStage("classify", time.Since(start))
	if err != nil {
		s.logger.Warn("classification failed", zap.String("document", doc.Name), zap.Error(err))
		return nil, err
	}

	s.metrics.ObserveClassification(string(result.DocumentType), result.Confidence)
	s.logger.Info("document classified",
		zap.String("document", doc.Name),
		zap.String("document_type", string(result.DocumentType)),
		zap.Int("confidence", result.Confidence))
	return result, nil
}

// Process classifies doc when documentType is nil, then extracts and projects it. An explicit
// type skips classification entirely.
func (s *documentService) Process(ctx context.Context, doc domain.Document, documentType *domain.DocumentType) (*ProcessResult, error) {
	result := &ProcessResult{}
	if documentType == nil {
		cls, err := s.Classify(ctx, doc)
		if err != nil {
			s.metrics.ObserveProcessed("", outcome(err))
			return nil, err
		}
		result.Classification = cls
		result.DocumentType = cls.DocumentType
	} else {
		result.DocumentType = *documentType
	}

	log := s.logger.With(zap.String("document", doc.Name), zap.String("document_type", string(result.DocumentType)))
	dt := string(result.DocumentType)

	if result.DocumentType == domain.DocTypeUnknown {
		err := &domain.UnsupportedTypeError{DocumentType: result.DocumentType}
		s.metrics.ObserveProcessed(dt, outcome(err))
		log.Info("document not processable")
		return result, err
	}
	if len(doc.Content) == 0 {
		s.metrics.ObserveProcessed(dt, outcome(domain.ErrEmptyDocument))
		return result, domain.ErrEmptyDocument
	}

	start := time.Now()
	rec, err := s.dispatcher.Extract(ctx, doc, result.DocumentType)
	s.metrics.ObserveStage("extract", time.Since(start))
	if err != nil {
		s.metrics.ObserveProcessed(dt, outcome(err))
		log.Warn("extraction failed", zap.Error(err))
		return result, err
	}

	start = time.Now()
	out, err := s.projector.Project(rec, result.DocumentType)
	s.metrics.ObserveStage("project", time.Since(start))
	if err != nil {
		s.metrics.ObserveProcessed(dt, outcome(err))
		log.Warn("projection failed", zap.Error(err))
		return result, err
	}

	result.Output = out
	result.OverallConfidence = rec.OverallConfidence
	result.ModelUsed = rec.ModelUsed
	result.RowIssues = rec.RowIssues
	s.metrics.ObserveProcessed(dt, outcome(nil))

	if len(rec.RowIssues) > 0 {
		log.Warn("rows dropped during validation", zap.Int("dropped", len(rec.RowIssues)), zap.Int("kept", len(rec.Rows)))
	}
	log.Info("document processed",
		zap.Float64("overall_confidence", rec.OverallConfidence),
		zap.String("model", rec.ModelUsed))
	return result, nil
}

func (s *documentService) ListTypes() []domain.DocumentType {
	return s.registry.ListTypes()
}

// outcome maps a pipeline error to its metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSchemaValidation):
		return "schema_validation"
	case errors.Is(err, domain.ErrExtractorUnavailable):
		return "extractor_unavailable"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, domain.ErrUnregisteredType):
		return "unregistered_type"
	case errors.Is(err, domain.ErrIncompleteAggregation):
		return "incomplete_aggregation"
	case errors.Is(err, domain.ErrEmptyDocument):
		return "empty_document"
	default:
		return "error"
	}
}
