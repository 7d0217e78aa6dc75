package slug

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultCodeLength is the length of generated short codes.
	DefaultCodeLength = 7

	// maxGenerateRetries bounds collision retries before giving up.
	maxGenerateRetries = 5
)

// ExistsFunc reports whether a candidate code is already taken in the
// namespace being generated for.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator produces random short codes with collision retry.
type Generator struct {
	newCode func() string
}

// NewGenerator creates a Generator producing codes of the given length.
func NewGenerator(length int) (*Generator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}
	newCode, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("init nanoid: %w", err)
	}
	return &Generator{newCode: newCode}, nil
}

// Unique generates a code that the exists check does not know, retrying
// on collision a bounded number of times.
func (g *Generator) Unique(ctx context.Context, exists ExistsFunc) (string, error) {
	for i := 0; i < maxGenerateRetries; i++ {
		code := g.newCode()
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("failed to generate unique code after retries")
}
