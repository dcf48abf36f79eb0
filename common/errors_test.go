package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestKnown(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrNotFound, true},
		{"wrapped", fmt.Errorf("get user: %w", ErrUnauthorized), true},
		{"foreign", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Known(tt.err); got != tt.want {
				t.Fatalf("Known(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
