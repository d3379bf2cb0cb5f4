package llm

import (
	"context"
	"errors"
)

// Image is one page handed to a vision model.
type Image struct {
	MimeType string
	Data     []byte
}

// VisionRequest is a single multimodal prompt: the instruction text followed by
// the page images in order.
type VisionRequest struct {
	Instruction string
	Images      []Image
}

// VisionClient abstracts LLM providers that accept images.
type VisionClient interface {
	Complete(ctx context.Context, req VisionRequest) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider credentials are configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, req VisionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}
