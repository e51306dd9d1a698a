package extractor

import (
	"fmt"

	"go.uber.org/zap"

	"gasdoc/internal/config"
	"gasdoc/internal/port"
)

// ProviderFactory creates a Generator from a provider config.
type ProviderFactory func(cfg *config.ExtractorProviderConfig) (Generator, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewGenerator creates a Generator from a provider config using the registered factory.
// A positive RequestsPerMinute wraps the generator in a client-side rate limiter.
func NewGenerator(cfg *config.ExtractorProviderConfig) (Generator, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extractor provider: %s", cfg.Provider)
	}
	gen, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s generator: %w", cfg.Provider, err)
	}
	if cfg.RequestsPerMinute > 0 {
		gen = NewRateLimitedGenerator(gen, cfg.RequestsPerMinute)
	}
	return gen, nil
}

// New assembles the StructuredExtractor described by cfg.Mode.
func New(cfg *config.ExtractorConfig, logger *zap.Logger) (port.StructuredExtractor, error) {
	slots := []*config.ExtractorProviderConfig{cfg.PrimaryConfig()}
	if s := cfg.SecondaryConfig(); s != nil {
		slots = append(slots, s)
	}
	if t := cfg.TertiaryConfig(); t != nil {
		slots = append(slots, t)
	}

	extractors := make([]port.StructuredExtractor, 0, len(slots))
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		gen, err := NewGenerator(slot)
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, NewLLMExtractor(gen, WithMaxRetries(slot.MaxRetries)))
		names = append(names, slot.Provider)
	}

	switch cfg.Mode {
	case "", "single":
		return extractors[0], nil
	case "fallback":
		if len(extractors) == 1 {
			return extractors[0], nil
		}
		return NewFallbackExtractor(extractors, names, logger), nil
	case "merge":
		if len(extractors) < 2 {
			return nil, fmt.Errorf("extractor mode merge requires a secondary provider")
		}
		return NewMergeExtractor(extractors[0], extractors[1], logger), nil
	default:
		return nil, fmt.Errorf("unknown extractor mode: %s", cfg.Mode)
	}
}
