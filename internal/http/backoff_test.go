package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateBackoff(t *testing.T) {
	config := BackoffConfig{
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		Multiplier:  2.0,
		MaxAttempts: 5,
	}

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{"zero attempt returns base delay", 0, time.Second},
		{"negative attempt returns base delay", -1, time.Second},
		{"first retry", 1, 2 * time.Second},
		{"second retry", 2, 4 * time.Second},
		{"third retry", 3, 8 * time.Second},
		{"capped at max delay", 10, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateBackoff(config, tt.attempt))
		})
	}
}

func TestCalculateBackoff_LargeAttemptDoesNotOverflow(t *testing.T) {
	config := BackoffConfig{
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Minute,
		Multiplier: 2.0,
	}

	delay := CalculateBackoff(config, 1000)
	assert.Equal(t, time.Minute, delay)
	assert.Positive(t, delay)
}

func TestDefaultBackoffConfig(t *testing.T) {
	config := DefaultBackoffConfig()

	assert.Equal(t, 500*time.Millisecond, config.BaseDelay)
	assert.Equal(t, 30*time.Second, config.MaxDelay)
	assert.Equal(t, 2.0, config.Multiplier)
	assert.Equal(t, 3, config.MaxAttempts)
}
