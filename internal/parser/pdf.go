package parser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner abstracts external tool invocation so PDF extraction can be
// tested without pdftotext installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// parsePDF extracts text via pdftotext (poppler-utils). The content is
// written to a temp file since pdftotext does not read PDFs from stdin.
func (p *Parser) parsePDF(ctx context.Context, content []byte) (string, error) {
	dir, err := os.MkdirTemp("", "voicerag-pdf-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "upload.pdf")
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("writing temp pdf: %w", err)
	}

	// "-" sends extracted text to stdout.
	out, err := p.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	text := strings.ToValidUTF8(string(out), "")
	p.logger.Debug("Parsed PDF", "chars", len(text))
	return text, nil
}
