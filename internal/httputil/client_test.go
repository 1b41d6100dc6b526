package httputil

import (
	"errors"
	"strings"
	"testing"
)

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("hello"), 5)
	if err != nil {
		t.Fatalf("ReadLimited: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want hello", data)
	}

	_, err = ReadLimited(strings.NewReader("hello!"), 5)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}

func TestNewClient(t *testing.T) {
	if c := NewClient(); c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
}
