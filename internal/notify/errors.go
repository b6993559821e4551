package notify

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigError reports a destination that cannot be built from its settings.
// The builder logs it and leaves the destination out; it is never fatal.
type ConfigError struct {
	Channel string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Channel, e.Reason)
}

// permanentError marks a delivery failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so the retrier gives up after the first attempt.
// Destinations use it for rejected credentials and similar dead ends.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err (or anything it wraps) was marked permanent.
// Unmarked errors count as transient and get retried.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// statusErr classifies an HTTP response code. Client errors are permanent,
// except request timeouts and rate limits; server errors are worth retrying.
func statusErr(status int) error {
	err := fmt.Errorf("api returned status %d", status)
	if status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
		return Permanent(err)
	}
	return err
}
