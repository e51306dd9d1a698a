package classifier

import (
	"context"
	"strings"

	"gasdoc/internal/domain"
	"gasdoc/internal/port"
)

// ContentRouter sends plain text to a local source and everything else (PDF bytes) to a
// remote source that can read the document layout. A nil remote routes everything locally.
type ContentRouter struct {
	text   port.SignalSource
	remote port.SignalSource
}

// NewContentRouter creates a ContentRouter.
func NewContentRouter(text, remote port.SignalSource) *ContentRouter {
	return &ContentRouter{text: text, remote: remote}
}

func (r *ContentRouter) ClassifyDocument(ctx context.Context, input port.DocumentInput) (*domain.Signals, error) {
	if r.remote == nil || strings.HasPrefix(input.ContentType, "text/") {
		return r.text.ClassifyDocument(ctx, input)
	}
	return r.remote.ClassifyDocument(ctx, input)
}
