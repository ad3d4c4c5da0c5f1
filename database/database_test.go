package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset falls back", "", 25},
		{"valid override", "40", 40},
		{"non-numeric falls back", "lots", 25},
		{"non-positive falls back", "0", 25},
		{"negative falls back", "-3", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_MAX_OPEN_CONNS", tt.value)
			assert.Equal(t, tt.want, envInt("DB_MAX_OPEN_CONNS", 25))
		})
	}
}
