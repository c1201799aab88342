package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"strconv"
	"time"
)

// A StatusError is returned by Error for a non-2xx response.
type StatusError struct {
	Code int

	// RetryAfter is parsed from the Retry-After header, if there was one.
	RetryAfter time.Duration

	dump string
}

func (err *StatusError) Error() string {
	if err.dump == "" {
		return fmt.Sprintf("http status code %d", err.Code)
	}
	return fmt.Sprintf("http status code %d:\n%s", err.Code, err.dump)
}

// Error checks the given http response for an error code, and, if one is
// present, reads the body and returns a friendly *StatusError.
func Error(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	err := &StatusError{
		Code:       resp.StatusCode,
		RetryAfter: RetryAfter(resp),
	}
	if bs, dumpErr := httputil.DumpResponse(resp, true); dumpErr == nil {
		err.dump = string(bs)
	}
	return err
}

// IsStatus reports whether err wraps a *StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}

// RetryAfter parses the Retry-After header, which is either a number of
// seconds or an http date. It returns zero if there's no usable header.
func RetryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(header); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}
