package services

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Session is the shared transport handle for one batch. It wraps a single *resty.Client (connection pooling is managed by
// resty/net/http beneath it) plus the logger every adapter call should use,
// pre-tagged with the batch's correlation ID.
type Session struct {
	HTTP *resty.Client
	Log  *zap.Logger
}

// NewSession builds a session with the given per-request timeout. timeout
// bounds a single HTTP round-trip; the retry loop in package resolver is
// what bounds the total number of attempts.
func NewSession(timeout time.Duration, log *zap.Logger) *Session {
	client := resty.New().SetTimeout(timeout)
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{HTTP: client, Log: log}
}
