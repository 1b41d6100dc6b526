package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 30 * time.Second

// MaxLogSize bounds how many bytes of a sensor log are accepted, whether
// uploaded or fetched.
const MaxLogSize = 32 << 20

var ErrTooLarge = errors.New("payload exceeds size limit")

// NewClient returns an HTTP client with standard timeout configuration.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
	}
}

// ReadLimited reads r to EOF, failing with ErrTooLarge if more than limit
// bytes are available.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
