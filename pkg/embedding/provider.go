package embedding

import "context"

// Provider turns text into a fixed-dimension vector.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
