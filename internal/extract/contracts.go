package extract

import (
	"context"
	"time"
)

// TextExtractor turns one CV document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Duration time.Duration
	Warnings []string
}

// AudioTranscriber turns one call recording into a transcript.
type AudioTranscriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}
