package textgen

import (
	"context"
	"strings"
	"time"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

// Generator turns a prompt into prose. Implementations may fail or be
// unconfigured; every call site keeps a deterministic template fallback.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// generateTimeout bounds a single generation attempt so callers never
// stall on a slow provider.
const generateTimeout = 10 * time.Second

// GenerateOrDefault makes one attempt against gen and falls back to the
// deterministic template on absence, failure, or empty output. It never
// retries.
func GenerateOrDefault(ctx context.Context, gen Generator, prompt, fallback string, logger *logging.Logger) string {
	if gen == nil {
		return fallback
	}
	if logger == nil {
		logger = logging.Default()
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("textgen: generation failed, using template", "error", err)
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("textgen: empty generation, using template")
		return fallback
	}
	return text
}
