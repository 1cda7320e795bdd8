package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"groundchat/internal/domain"
)

type Kind string

const (
	KindCredential Kind = "credential"
	KindQuota      Kind = "quota"
	KindRate       Kind = "rate"
	KindContext    Kind = "context"
	KindTransient  Kind = "transient"
	KindPermanent  Kind = "permanent"
)

// Error is a classified completion failure. It matches domain.ErrGatewayFailure
// and the underlying cause with errors.Is.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() []error { return []error{domain.ErrGatewayFailure, e.Err} }

func newError(status int, err error) *Error {
	return &Error{Kind: classify(status, err), Status: status, Err: err}
}

func classify(status int, err error) Kind {
	if errors.Is(err, domain.ErrMissingCredential) {
		return KindCredential
	}
	msg := ""
	if err != nil {
		msg = strings.ToLower(err.Error())
	}
	switch {
	case status == http.StatusPaymentRequired,
		strings.Contains(msg, "insufficient_quota"), strings.Contains(msg, "quota"), strings.Contains(msg, "credit"):
		return KindQuota
	case status == http.StatusTooManyRequests, strings.Contains(msg, "rate limit"):
		return KindRate
	case strings.Contains(msg, "context_length"), strings.Contains(msg, "too long"):
		return KindContext
	case status == http.StatusRequestTimeout, status >= 500:
		return KindTransient
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return KindTransient
	}
	if strings.Contains(msg, "temporarily") || strings.Contains(msg, "unavailable") {
		return KindTransient
	}
	return KindPermanent
}
