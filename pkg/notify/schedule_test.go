package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoxlab/notify/pkg/notify"
)

func TestParseSendAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	t.Run("rfc3339 in the future", func(t *testing.T) {
		t.Parallel()

		at, err := notify.ParseSendAt("2026-08-27T15:00:00Z", now)
		require.NoError(t, err)
		require.NotNil(t, at)
		assert.True(t, at.Equal(time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)))
	})

	t.Run("past time means send now", func(t *testing.T) {
		t.Parallel()

		at, err := notify.ParseSendAt("2020-01-01T00:00:00Z", now)
		require.NoError(t, err)
		assert.Nil(t, at)
	})

	t.Run("local layout", func(t *testing.T) {
		t.Parallel()

		at, err := notify.ParseSendAt("2099-12-31 23:59", now)
		require.NoError(t, err)
		require.NotNil(t, at)
		assert.Equal(t, 2099, at.Year())
	})

	t.Run("empty means no deferral", func(t *testing.T) {
		t.Parallel()

		at, err := notify.ParseSendAt("  ", now)
		require.NoError(t, err)
		assert.Nil(t, at)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := notify.ParseSendAt("next tuesday", now)
		assert.Error(t, err)
	})
}

func TestParseDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr string
		want time.Duration
	}{
		{"90", 90 * time.Second},
		{"15m", 15 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"2d 4h", 52 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"10 s", 10 * time.Second},
		{"PT10M", 10 * time.Minute},
		{"PT1H30M", 90 * time.Minute},
		{"P1DT2H", 26 * time.Hour},
		{"P2W", 14 * 24 * time.Hour},
		{"pt45s", 45 * time.Second},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.expr, func(t *testing.T) {
			t.Parallel()

			got, err := notify.ParseDelay(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, expr := range []string{"", "-5", "abc", "12x", "P", "PT", "P1Y", "h30m"} {
		expr := expr
		t.Run("invalid "+expr, func(t *testing.T) {
			t.Parallel()

			_, err := notify.ParseDelay(expr)
			assert.ErrorIs(t, err, notify.ErrInvalidDelay)
		})
	}
}

func TestDeferIn(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	at, err := notify.DeferIn("2h", now)
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.True(t, at.Equal(now.Add(2*time.Hour)))

	_, err = notify.DeferIn("nope", now)
	assert.Error(t, err)
}
