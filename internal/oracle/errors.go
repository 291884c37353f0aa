package oracle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// FailureKind classifies an oracle failure for the decision log.
type FailureKind string

const (
	FailureRateLimit     FailureKind = "rate_limit"
	FailureTimeout       FailureKind = "timeout"
	FailureTokenOverflow FailureKind = "token_overflow"
	FailureSchema        FailureKind = "schema"
	FailureOther         FailureKind = "other"
)

// Error wraps a failed oracle invocation with its classification. It never
// propagates out of a traversal: the batch client converts it to fallback
// decisions for the affected chunk.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("oracle failure (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SchemaError builds a schema-kind failure.
func SchemaError(err error) *Error {
	return &Error{Kind: FailureSchema, Err: err}
}

// Classify wraps err with the failure kind inferred from its type and text.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var oerr *Error
	if errors.As(err, &oerr) {
		return oerr
	}
	return &Error{Kind: classifyKind(err), Err: err}
}

func classifyKind(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 429:
			return FailureRateLimit
		case 400, 413:
			if containsAny(apiErr.Message, "context length", "maximum context", "too many tokens") {
				return FailureTokenOverflow
			}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "rate limit", "429", "quota", "overloaded"):
		return FailureRateLimit
	case containsAny(msg, "timeout", "deadline exceeded"):
		return FailureTimeout
	case containsAny(msg, "context length", "maximum context", "token limit", "too many tokens"):
		return FailureTokenOverflow
	}
	return FailureOther
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
