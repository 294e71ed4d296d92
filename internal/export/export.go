// Package export renders parsed transcripts to markdown or plain text and
// writes them into the configured output directory.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatgrep/internal/domain"
)

// Format selects the rendering of an exported transcript.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Renderer turns a transcript into exported file content.
type Renderer interface {
	Render(t domain.Transcript) string
	Extension() string
}

// RendererFor returns the renderer for the given format, defaulting to
// markdown for unknown values.
func RendererFor(f Format) Renderer {
	if f == FormatText {
		return textRenderer{}
	}
	return markdownRenderer{}
}

// Extractor writes rendered transcripts under an output directory.
type Extractor struct {
	outputDir string
	renderer  Renderer
	logger    *zap.Logger
}

// NewExtractor returns an Extractor writing to outputDir with the given
// renderer.
func NewExtractor(outputDir string, renderer Renderer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{outputDir: outputDir, renderer: renderer, logger: logger}
}

// Extract renders the transcript and writes it to the output directory,
// returning the written path.
func (e *Extractor) Extract(t domain.Transcript) (string, error) {
	if len(t.Messages) == 0 {
		return "", fmt.Errorf("transcript %s has no messages", t.Path)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, e.filename(t))
	content := e.renderer.Render(t)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	e.logger.Info("exported transcript",
		zap.String("source", t.Path),
		zap.String("output", path),
		zap.Int("messages", len(t.Messages)))
	return path, nil
}

// ExtractAll exports every transcript, collecting the written paths. Errors
// on individual transcripts are logged and skipped so one bad file does not
// abort a bulk export.
func (e *Extractor) ExtractAll(transcripts []domain.Transcript) []string {
	paths := make([]string, 0, len(transcripts))
	for _, t := range transcripts {
		path, err := e.Extract(t)
		if err != nil {
			e.logger.Warn("skipping transcript", zap.String("path", t.Path), zap.Error(err))
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// filename builds a stable output name from the project, conversation id and
// first message timestamp.
func (e *Extractor) filename(t domain.Transcript) string {
	stamp := t.Modified
	if len(t.Messages) > 0 && t.Messages[0].Timestamp != nil {
		stamp = *t.Messages[0].Timestamp
	}
	if stamp.IsZero() {
		stamp = time.Now()
	}

	project := sanitize(t.Project)
	if project == "" {
		project = "conversation"
	}
	id := t.ConversationID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s-%s-%s%s", project, stamp.Format("2006-01-02"), id, e.renderer.Extension())
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func speakerLabel(s domain.Speaker) string {
	switch s {
	case domain.SpeakerHuman:
		return "Human"
	case domain.SpeakerAssistant:
		return "Assistant"
	default:
		return "Unknown"
	}
}
