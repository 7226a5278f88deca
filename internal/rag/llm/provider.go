package llm

import "context"

// Provider is the opaque prompt -> text generation model.
type Provider interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}
