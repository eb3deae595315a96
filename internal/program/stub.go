//go:build !cgo

package program

import (
	"context"
)

// Parser turns module source into a Program.
// This is a stub implementation for non-CGO builds.
type Parser struct{}

// NewParser creates a new parser.
func NewParser() *Parser {
	return &Parser{}
}

// IsAvailable returns whether parsing is available.
// Returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}

// Parse always fails in non-CGO builds.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*Program, error) {
	return nil, ErrNoCGO
}
