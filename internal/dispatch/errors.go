package dispatch

import (
	"errors"
	"fmt"
)

// ErrQueueFull reports transient back-pressure: the shard queue was full
// when Submit tried to enqueue a job.
var ErrQueueFull = errors.New("dispatch queue full")

// ErrExecutorClosed reports a permanent condition: the executor has been
// stopped and will accept no further work.
var ErrExecutorClosed = errors.New("dispatch executor closed")

// QueueFullError carries diagnostics while satisfying errors.Is(_, ErrQueueFull).
type QueueFullError struct {
	Shard    int // 0 <= Shard < cfg.Shards
	Length   int // queue length at timeout
	Capacity int // cap(queue)
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("dispatch shard %d full (len=%d cap=%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }

// ErrorCategory determines how the worker retry loop treats a failed job.
type ErrorCategory int

const (
	// Recoverable failures are retried with exponential backoff.
	// Examples: HTTP 5xx, rate limits, network timeouts.
	Recoverable ErrorCategory = iota

	// Irrecoverable failures stop retrying immediately.
	// Examples: HTTP 400, 401, 403.
	Irrecoverable
)

func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError attaches a retry category to an error. Transports
// classify at the point the failure is best understood, typically from
// an HTTP status.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // response body for debugging
	Underlying error
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

func (e *ClassifiedError) Unwrap() error { return e.Underlying }

// IsIrrecoverable reports whether err carries a category that forbids
// retrying. Unclassified errors are treated as recoverable.
func IsIrrecoverable(err error) bool {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Category == Irrecoverable
	}
	return false
}

// ClassifyStatus maps an HTTP status code to a retry category. 5xx and
// the transient 4xx codes (408 and 429) are recoverable, the remaining
// 4xx fail fast, anything else is retried conservatively.
func ClassifyStatus(statusCode int, body string, underlying error) *ClassifiedError {
	category := Recoverable
	if statusCode >= 400 && statusCode < 500 && statusCode != 408 && statusCode != 429 {
		category = Irrecoverable
	}
	return &ClassifiedError{
		Category:   category,
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlying,
	}
}
