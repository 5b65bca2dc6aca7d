package storage

import (
	"errors"
	"fmt"
	"testing"
)

var errConnRefused = errors.New("connection refused")

func TestDialectClassify(t *testing.T) {
	d := Dialect{IsUnavailable: func(err error) bool { return errors.Is(err, errConnRefused) }}

	tests := []struct {
		name            string
		err             error
		wantUnavailable bool
	}{
		{"nil", nil, false},
		{"connectivity", fmt.Errorf("ping: %w", errConnRefused), true},
		{"already classified", fmt.Errorf("%w: x", ErrUnavailable), true},
		{"statement error", errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Classify(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("Classify(nil) = %v", got)
				}
				return
			}
			if errors.Is(got, ErrUnavailable) != tt.wantUnavailable {
				t.Errorf("Classify(%v) = %v, unavailable want %v", tt.err, got, tt.wantUnavailable)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify(%v) lost the original error", tt.err)
			}
		})
	}
}
