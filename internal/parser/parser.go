// Package parser converts uploaded document bytes to plain text.
// Supported types: .pdf, .docx, .txt, .md. Everything downstream (chunking,
// embedding) sees only the normalized text this package produces.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for extensions outside the allow-list.
var ErrUnsupportedType = errors.New("unsupported file type")

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

// Parser dispatches on file extension. PDF extraction shells out to
// pdftotext through an injectable CommandRunner.
type Parser struct {
	runner CommandRunner
	logger *slog.Logger
}

// New creates a Parser using the real command runner.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{runner: &execRunner{}, logger: logger}
}

// Supported reports whether the filename's extension is on the allow-list.
func Supported(filename string) bool {
	return supportedExtensions[extensionOf(filename)]
}

// Extensions returns the allow-list for error messages.
func Extensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md"}
}

// Parse converts content to plain text based on the filename's extension.
func (p *Parser) Parse(ctx context.Context, content []byte, filename string) (string, error) {
	ext := extensionOf(filename)
	switch ext {
	case ".pdf":
		return p.parsePDF(ctx, content)
	case ".docx":
		return p.parseDOCX(content)
	case ".txt":
		return p.parseText(content), nil
	case ".md":
		return p.parseMarkdown(content), nil
	default:
		return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedType, ext, strings.Join(Extensions(), ", "))
	}
}

// parseText decodes bytes as UTF-8, dropping invalid sequences.
func (p *Parser) parseText(content []byte) string {
	text := strings.ToValidUTF8(string(content), "")
	p.logger.Debug("Parsed text file", "chars", len(text))
	return text
}

func extensionOf(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}
