package llm

import "context"

// GenerateFunc adapts a plain generate function to the Client interface.
// Tests use it to script model replies without any network dependency.
type GenerateFunc func(ctx context.Context, prompt string, tier ModelTier) (string, error)

// GenerateContent implements Client.
func (f GenerateFunc) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return f(ctx, prompt, tier)
}

// GenerateJSON implements Client. Fence stripping matches the real
// client's behavior so stubbed replies can include markdown wrappers.
func (f GenerateFunc) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := f(ctx, prompt, tier)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Close implements Client.
func (f GenerateFunc) Close() error { return nil }
