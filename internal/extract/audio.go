package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantumtech/hiredroid/internal/common"
)

// AudioConfig names the external binaries used for transcript recovery.
type AudioConfig struct {
	FFmpeg  string // if empty -> "ffmpeg"
	Whisper string // if empty -> "whisper-cli"
	Model   string // whisper model path, optional
}

// ExecTranscriber implements AudioTranscriber by shelling out: mp3 input is
// converted to wav with ffmpeg, then transcribed with a whisper binary.
type ExecTranscriber struct {
	cfg    AudioConfig
	runner Runner
	logger *slog.Logger
}

func NewExecTranscriber(cfg AudioConfig, logger *slog.Logger) *ExecTranscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	if cfg.Whisper == "" {
		cfg.Whisper = "whisper-cli"
	}
	return &ExecTranscriber{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (t *ExecTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	wavPath := path
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		converted, cleanup, err := t.toWav(ctx, path)
		if err != nil {
			return "", err
		}
		defer cleanup()
		wavPath = converted
	}

	args := []string{"-f", wavPath, "-nt"}
	if t.cfg.Model != "" {
		args = append([]string{"-m", t.cfg.Model}, args...)
	}
	out, errb, err := t.runner.Run(ctx, t.cfg.Whisper, args...)
	if err != nil {
		return "", fmt.Errorf("%w: transcribe %s: %v (%s)", common.ErrWorkerUnavailable, path, err, truncate(string(errb), 512))
	}
	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript for %s", common.ErrMalformedWorkerOutput, path)
	}
	t.logger.Info("extract.audio.transcribed", "path", path, "bytes", len(text))
	return text, nil
}

func (t *ExecTranscriber) toWav(ctx context.Context, path string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "hd-audio-*.wav")
	if err != nil {
		return "", nil, err
	}
	_ = tmp.Close()
	wavPath := tmp.Name()

	_, errb, err := t.runner.Run(ctx, t.cfg.FFmpeg, "-y", "-i", path, "-ar", "16000", "-ac", "1", wavPath)
	if err != nil {
		_ = os.Remove(wavPath)
		return "", nil, fmt.Errorf("%w: convert %s to wav: %v (%s)", common.ErrWorkerUnavailable, path, err, truncate(string(errb), 512))
	}
	return wavPath, func() { _ = os.Remove(wavPath) }, nil
}
