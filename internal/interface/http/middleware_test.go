package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/mood-journal/internal/infra/config"
)

func TestRetryExclusionsMatchTemplates(t *testing.T) {
	exclusions := newRetryExclusions([]string{"/api/v1/entries", "/api/v1/entries/:id/analyze", " "})

	cases := map[string]bool{
		"/api/v1/entries":                  true,
		"/api/v1/entries/":                 true,
		"/api/v1/entries/0f8b/analyze":     true,
		"/api/v1/entries/0f8b":             false,
		"/api/v1/entries/0f8b/analyze/now": false,
		"/api/v1/entries//analyze":         false,
		"/api/v1/auth/logout":              false,
	}
	for path, want := range cases {
		t.Run(path, func(t *testing.T) {
			require.Equal(t, want, exclusions.excluded(path))
		})
	}
}

func TestIPRateLimiterRefillsAndReportsWait(t *testing.T) {
	limiter := newIPRateLimiter(config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 2})
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.allow("10.0.0.1")
	require.True(t, ok)
	ok, _ = limiter.allow("10.0.0.1")
	require.True(t, ok)

	ok, wait := limiter.allow("10.0.0.1")
	require.False(t, ok)
	require.InDelta(t, float64(time.Second), float64(wait), float64(time.Millisecond))

	ok, _ = limiter.allow("10.0.0.2")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, _ = limiter.allow("10.0.0.1")
	require.True(t, ok)
}

func TestStatusForCode(t *testing.T) {
	require.Equal(t, 400, statusForCode("invalid_input"))
	require.Equal(t, 401, statusForCode("invalid_credentials"))
	require.Equal(t, 403, statusForCode("invalid_token"))
	require.Equal(t, 404, statusForCode("not_found"))
	require.Equal(t, 409, statusForCode("username_exists"))
	require.Equal(t, 429, statusForCode("rate_limit_exceeded"))
	require.Equal(t, 502, statusForCode("analysis_unavailable"))
	require.Equal(t, 500, statusForCode("journal_error"))
}
