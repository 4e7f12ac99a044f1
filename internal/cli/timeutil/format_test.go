package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"72h30m15s", "3d 0h 30m 15s"},
		{"1h2m3s", "1h 2m 3s"},
		{"2m5s", "2m 5s"},
		{"9s", "9s"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.in), tt.in)
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "not-a-time", FormatTime("not-a-time"))

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts.Local().Format(LocalTimeFormat), FormatTime(ts.Format(time.RFC3339)))
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "4m 2s", FormatAge(now.Add(-4*time.Minute-2*time.Second), now))
	assert.Equal(t, "-", FormatAge(time.Time{}, now))
	assert.Equal(t, "-", FormatAge(now.Add(time.Second), now))
}
