package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// PDFConfig names the external binary used for text extraction.
type PDFConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// PDFExtractor implements TextExtractor for text-layer PDFs via pdftotext.
// CVs are almost always digitally produced, so no OCR fallback is wired.
type PDFExtractor struct {
	cfg    PDFConfig
	runner Runner
	logger *slog.Logger
}

func NewPDFExtractor(cfg PDFConfig, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &PDFExtractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	start := time.Now()
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return TextExtractionResult{Warnings: []string{string(errb)}}, err
	}
	text := string(out)
	res := TextExtractionResult{
		Text: text,
		// A form-feed \f is used as page separator by default.
		Pages:    1 + strings.Count(text, "\f"),
		Duration: time.Since(start),
	}
	e.logger.Debug("extract.pdf.ok", "path", path, "pages", res.Pages, "bytes", len(text))
	return res, nil
}
