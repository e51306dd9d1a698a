package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// NoSignalsReasoning is the reasoning attached to documents without any usable evidence.
const NoSignalsReasoning = "no recognized structural or terminology signals"

// Classifier assigns a document type by running an ordered rule list over the
// signals reported by its SignalSource. It keeps no state between calls.
type Classifier struct {
	source  port.SignalSource
	timeout time.Duration
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTimeout bounds each call into the signal source.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) { c.timeout = d }
}

// New creates a Classifier backed by source.
func New(source port.SignalSource, opts ...Option) *Classifier {
	c := &Classifier{source: source}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify returns the document type, confidence and evidence for doc. Empty or
// unreadable content degrades to unknown; only signal source failures are returned as errors.
func (c *Classifier) Classify(ctx context.Context, doc domain.Document) (*domain.ClassificationResult, error) {
	if len(strings.TrimSpace(string(doc.Content))) == 0 {
		return noSignals(domain.LanguageEnglish), nil
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	sig, err := c.source.ClassifyDocument(callCtx, port.DocumentInput{Content: doc.Content, ContentType: doc.ContentType})
	if err != nil {
		var unavailable *domain.ExtractorUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &domain.ExtractorUnavailableError{Op: "classify", Err: err}
	}
	if sig == nil {
		sig = &domain.Signals{}
	}
	return Evaluate(*sig), nil
}

// Evaluate runs the decision procedure over an already gathered signal bundle.
func Evaluate(sig domain.Signals) *domain.ClassificationResult {
	e := newEvidence(sig)

	var rejected []string
	for _, r := range rules {
		decisive, ok := r.match(e)
		if !ok {
			rejected = append(rejected, fmt.Sprintf("not %s: %s", r.docType, r.reject(e)))
			continue
		}
		conf, fired := r.confidence(e)
		return result(e, r.docType, conf, reasoning(r.docType, decisive, fired, rejected))
	}

	if !e.hasEvidence() {
		res := noSignals(e.signals.Language)
		res.DetectedFeatures = features(e)
		return res
	}
	conf, fired := unknownRule.confidence(e)
	return result(e, domain.DocTypeUnknown, conf, reasoning(domain.DocTypeUnknown, nil, fired, rejected))
}

func reasoning(dt domain.DocumentType, decisive, fired, rejected []string) string {
	var b strings.Builder
	if dt == domain.DocTypeUnknown {
		b.WriteString("no rule matched")
		if len(fired) > 0 {
			fmt.Fprintf(&b, " (weak signals: %s)", strings.Join(fired, ", "))
		}
	} else {
		fmt.Fprintf(&b, "classified as %s on %s", dt, strings.Join(decisive, " + "))
		if len(fired) > 0 {
			fmt.Fprintf(&b, "; corroborated by %s", strings.Join(fired, ", "))
		}
	}
	if len(rejected) > 0 {
		fmt.Fprintf(&b, "; %s", strings.Join(rejected, "; "))
	}
	return b.String()
}

func result(e *evidence, dt domain.DocumentType, conf int, why string) *domain.ClassificationResult {
	return &domain.ClassificationResult{
		DocumentType:     dt,
		Confidence:       clamp(conf),
		Reasoning:        why,
		DetectedFeatures: features(e),
	}
}

func features(e *evidence) domain.DetectedFeatures {
	terms := e.signals.KeyTermsFound
	if terms == nil {
		terms = []string{}
	}
	return domain.DetectedFeatures{
		Platforms:       e.signals.Platforms,
		StructuralFlags: e.signals.Flags,
		Language:        e.signals.Language,
		KeyTermsFound:   terms,
	}
}

func noSignals(lang domain.Language) *domain.ClassificationResult {
	return &domain.ClassificationResult{
		DocumentType: domain.DocTypeUnknown,
		Confidence:   0,
		Reasoning:    NoSignalsReasoning,
		DetectedFeatures: domain.DetectedFeatures{
			Platforms:     []string{},
			Language:      lang,
			KeyTermsFound: []string{},
		},
	}
}

func clamp(n int) int {
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	default:
		return n
	}
}
