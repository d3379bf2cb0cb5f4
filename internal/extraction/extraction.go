package extraction

import (
	"context"
	"fmt"
	"io"

	"promotore-backend/internal/llm"
	"promotore-backend/internal/shared/storage/object"
)

// Extractor turns one stored document into free text.
type Extractor interface {
	Extract(ctx context.Context, filePath, instruction string) (string, error)
}

// Client reads a document from the store, rasterizes it and issues a single
// vision request with every page attached.
type Client struct {
	Store      object.ObjectStore
	Rasterizer *Rasterizer
	Vision     llm.VisionClient
}

func NewClient(store object.ObjectStore, rasterizer *Rasterizer, vision llm.VisionClient) *Client {
	return &Client{Store: store, Rasterizer: rasterizer, Vision: vision}
}

func (c *Client) Extract(ctx context.Context, filePath, instruction string) (string, error) {
	rc, err := c.Store.Open(ctx, filePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filePath, err)
	}

	pages, err := c.Rasterizer.Pages(ctx, data)
	if err != nil {
		return "", err
	}

	return c.Vision.Complete(ctx, llm.VisionRequest{
		Instruction: instruction,
		Images:      pages,
	})
}

var _ Extractor = (*Client)(nil)
