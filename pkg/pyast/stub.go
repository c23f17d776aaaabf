//go:build !cgo

package pyast

import (
	"context"
	"log/slog"
)

// ParserAvailable reports whether this build can parse Python source.
const ParserAvailable = false

// Parser is a stub for non-CGO builds. Every parse returns ErrNoCGO.
type Parser struct{}

// NewParser returns a stub parser.
func NewParser(_ *slog.Logger) *Parser {
	return &Parser{}
}

// ParseFile returns ErrNoCGO.
func (p *Parser) ParseFile(_ context.Context, _ string) (*File, error) {
	return nil, ErrNoCGO
}

// Parse returns ErrNoCGO.
func (p *Parser) Parse(_ context.Context, _ string, _ []byte) (*File, error) {
	return nil, ErrNoCGO
}
