package tts

import (
	"errors"
	"strings"
)

// QuotaError signals that a backend refused synthesis because a usage or
// credit quota is exhausted. Renderers treat it as a stop signal rather than
// a per-utterance failure: no further synthesis calls are issued and the run
// completes with whatever segments exist so far.
type QuotaError struct {
	// Provider names the backend that reported exhaustion.
	Provider string

	// Message is the backend's original error text.
	Message string
}

func (e *QuotaError) Error() string {
	if e.Provider == "" {
		return "tts: quota exhausted: " + e.Message
	}
	return e.Provider + ": quota exhausted: " + e.Message
}

// quotaPhrases are error-message fragments known to indicate quota or credit
// exhaustion on backends that report it only as free text.
var quotaPhrases = []string{
	"credit limit reached",
	"quota exceeded",
	"insufficient credits",
	"payment required",
}

// IsQuotaExhausted reports whether err indicates quota or credit exhaustion,
// either as a typed [*QuotaError] anywhere in the chain or by one of the
// well-known message phrases (matched case-insensitively).
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	var qe *QuotaError
	if errors.As(err, &qe) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range quotaPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
