package assist

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/proofline/internal/suggest"
)

// User-facing failure messages.
const (
	msgAuthFailed       = "Authentication failed: check your API key"
	msgNotFound         = "Model or endpoint not found"
	msgGrammarFailed    = "Grammar check failed"
	msgCorrectionFailed = "Correction failed"
)

// reportError shows one message for a failed grammar or correction call.
// Rate limiting trips the guard; nothing is retried.
func (e *Engine) reportError(kind string, err error) {
	e.lastErr = err
	e.metrics.discarded(kind, reasonError)

	ek := suggest.Classify(err)
	if ek == suggest.KindRateLimit {
		e.tripRateLimit()
		return
	}

	var msg string
	switch ek {
	case suggest.KindAuth:
		msg = msgAuthFailed
	case suggest.KindNotFound:
		msg = msgNotFound
	default:
		msg = msgGrammarFailed
		if kind == kindCorrection {
			msg = msgCorrectionFailed
		}
	}
	e.logger.Warn("provider call failed",
		zap.String("kind", kind),
		zap.Stringer("class", ek),
		zap.Error(err),
	)
	e.overlay.Status(msg)
}

// tripRateLimit pauses provider calls for the configured backoff.
func (e *Engine) tripRateLimit() {
	backoff := e.settings.Settings().RateLimitBackoff
	e.guard.Trip(backoff)
	e.metrics.RateLimitTrips.Inc()
	e.logger.Warn("provider rate limited", zap.Duration("backoff", backoff))
	e.overlay.Status(rateLimitMessage(backoff))
}

func rateLimitMessage(backoff time.Duration) string {
	return fmt.Sprintf("Rate limited: pausing suggestions for %ds", int(backoff.Round(time.Second)/time.Second))
}
