package api

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ErrCodeOK},
		{"structured", NewError(ErrCodeProtocol, "bad request"), ErrCodeProtocol},
		{"wrapped structured", fmt.Errorf("outer: %w", WrapError(ErrCodeIO, "read", io.ErrUnexpectedEOF)), ErrCodeIO},
		{"not supported", fmt.Errorf("reactor: %w on this platform", ErrNotSupported), ErrCodeNotSupported},
		{"invalid argument", ErrInvalidArgument, ErrCodeInvalidArgument},
		{"plain", errors.New("boom"), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := WrapError(ErrCodeIO, "write", io.ErrClosedPipe).WithContext("fd", 7)
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("errors.Is lost the cause: %v", err)
	}
	if want := "write: io: read/write on closed pipe (context: map[fd:7])"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
