package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		places int
		want   float64
	}{
		{"two places", 825.4999, 2, 825.5},
		{"half rounds up", 2.5, 0, 3},
		{"one place", 3.14159, 1, 3.1},
		{"negative half toward positive", -2.5, 0, -2},
		{"zero", 0, 2, 0},
		{"already rounded", 70.5, 2, 70.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundTo(tt.v, tt.places))
		})
	}
}

func TestNewIDUnique(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
