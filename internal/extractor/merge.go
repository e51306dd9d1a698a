package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// MergeExtractor runs two extractors in parallel. Signals are unioned; for structured
// extraction the response with the higher overall confidence wins, ties going to primary.
type MergeExtractor struct {
	primary   port.StructuredExtractor
	secondary port.StructuredExtractor
	logger    *zap.Logger
}

// NewMergeExtractor creates a MergeExtractor from primary and secondary extractors.
func NewMergeExtractor(primary, secondary port.StructuredExtractor, logger *zap.Logger) *MergeExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeExtractor{primary: primary, secondary: secondary, logger: logger}
}

type pair[T any] struct {
	primary, secondary       T
	primaryErr, secondaryErr error
}

// both runs call against the two extractors concurrently. Neither failure cancels the other.
func both[T any](m *MergeExtractor, call func(port.StructuredExtractor) (T, error)) pair[T] {
	var p pair[T]
	var g errgroup.Group
	g.Go(func() error {
		p.primary, p.primaryErr = call(m.primary)
		return nil
	})
	g.Go(func() error {
		p.secondary, p.secondaryErr = call(m.secondary)
		return nil
	})
	_ = g.Wait()
	return p
}

func (m *MergeExtractor) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	r := both(m, func(e port.StructuredExtractor) (*domain.Signals, error) {
		return e.ClassifyDocument(ctx, input)
	})

	switch {
	case r.primaryErr != nil && r.secondaryErr != nil:
		return nil, fmt.Errorf("both extractors failed: primary: %v; secondary: %w", r.primaryErr, r.secondaryErr)
	case r.primaryErr != nil:
		m.logger.Warn("primary extractor failed, using secondary signals only", zap.Error(r.primaryErr))
		return r.secondary, nil
	case r.secondaryErr != nil:
		m.logger.Warn("secondary extractor failed, using primary signals only", zap.Error(r.secondaryErr))
		return r.primary, nil
	}
	return mergeSignals(r.primary, r.secondary), nil
}

func (m *MergeExtractor) ExtractStructured(ctx context.Context, input port.ExtractInput) (*port.RawExtraction, error) {
	r := both(m, func(e port.StructuredExtractor) (*port.RawExtraction, error) {
		return e.ExtractStructured(ctx, input)
	})

	switch {
	case r.primaryErr != nil && r.secondaryErr != nil:
		return nil, fmt.Errorf("both extractors failed: primary: %v; secondary: %w", r.primaryErr, r.secondaryErr)
	case r.primaryErr != nil:
		m.logger.Warn("primary extractor failed, using secondary extraction only", zap.Error(r.primaryErr))
		return r.secondary, nil
	case r.secondaryErr != nil:
		m.logger.Warn("secondary extractor failed, using primary extraction only", zap.Error(r.secondaryErr))
		return r.primary, nil
	}

	ps, ss := overallScore(r.primary.Data), overallScore(r.secondary.Data)
	m.logger.Debug("merging extractions",
		zap.String("primary_model", r.primary.ModelUsed),
		zap.Float64("primary_score", ps),
		zap.String("secondary_model", r.secondary.ModelUsed),
		zap.Float64("secondary_score", ss))
	if ss > ps {
		return r.secondary, nil
	}
	return r.primary, nil
}

// overallScore reads overall_confidence_score from raw JSON; anything unreadable scores -1.
func overallScore(data json.RawMessage) float64 {
	var scored struct {
		Score *float64 `json:"overall_confidence_score"`
	}
	if err := json.Unmarshal(data, &scored); err != nil || scored.Score == nil {
		return -1
	}
	return *scored.Score
}

func mergeSignals(a, b *domain.Signals) *domain.Signals {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	lang := a.Language
	if lang == "" {
		lang = b.Language
	} else if b.Language != "" && b.Language != a.Language {
		lang = domain.LanguageMixed
	}
	return &domain.Signals{
		Platforms: union(a.Platforms, b.Platforms),
		Vendors:   union(a.Vendors, b.Vendors),
		Flags: domain.StructuralFlags{
			HasMultiplePlatforms:   a.Flags.HasMultiplePlatforms || b.Flags.HasMultiplePlatforms,
			HasMultipleVendors:     a.Flags.HasMultipleVendors || b.Flags.HasMultipleVendors,
			HasOperatorStatement:   a.Flags.HasOperatorStatement || b.Flags.HasOperatorStatement,
			HasSingleFieldFocus:    a.Flags.HasSingleFieldFocus || b.Flags.HasSingleFieldFocus,
			HasStatementOfAccount:  a.Flags.HasStatementOfAccount || b.Flags.HasStatementOfAccount,
			HasStatementNumber:     a.Flags.HasStatementNumber || b.Flags.HasStatementNumber,
			HasTotalSaleVolume:     a.Flags.HasTotalSaleVolume || b.Flags.HasTotalSaleVolume,
			HasCTEPSaleVolume:      a.Flags.HasCTEPSaleVolume || b.Flags.HasCTEPSaleVolume,
			HasHeatQuantitySection: a.Flags.HasHeatQuantitySection || b.Flags.HasHeatQuantitySection,
			HasVendorInvoiceTable:  a.Flags.HasVendorInvoiceTable || b.Flags.HasVendorInvoiceTable,
			HasAccountingData:      a.Flags.HasAccountingData || b.Flags.HasAccountingData,
		},
		Language:      lang,
		KeyTermsFound: union(a.KeyTermsFound, b.KeyTermsFound),
	}
}

// union keeps first-seen order and drops case-insensitive duplicates.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, s)
		}
	}
	return out
}
