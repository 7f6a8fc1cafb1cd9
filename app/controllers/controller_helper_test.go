package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElapsedMinutesRoundsUp(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{10 * time.Second, 1},
		{time.Minute, 1},
		{61 * time.Second, 2},
		{5 * time.Minute, 5},
		{5*time.Minute + time.Millisecond, 6},
	}
	for _, tc := range cases {
		if got := elapsedMinutes(tc.in); got != tc.want {
			t.Fatalf("elapsedMinutes(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func clientIPFromRequest(t *testing.T, headers map[string]string) (string, string) {
	t.Helper()

	var ipv4, ipv6 string
	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		ipv4, ipv6 = GetClientIP(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/probe", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	return ipv4, ipv6
}

func TestGetClientIPFromCloudflareHeader(t *testing.T) {
	ipv4, _ := clientIPFromRequest(t, map[string]string{
		"CF-Connecting-IP": "203.0.113.10",
	})
	assert.Equal(t, "203.0.113.10", ipv4)
}

func TestGetClientIPFromForwardedFor(t *testing.T) {
	ipv4, ipv6 := clientIPFromRequest(t, map[string]string{
		"X-Forwarded-For": "203.0.113.20, 2001:db8::1, 10.0.0.1",
	})
	assert.Equal(t, "203.0.113.20", ipv4)
	assert.Equal(t, "2001:db8::1", ipv6)
}

func TestGetClientIPPrefersFirstForwardedEntry(t *testing.T) {
	ipv4, _ := clientIPFromRequest(t, map[string]string{
		"X-Forwarded-For": "198.51.100.7, 203.0.113.20",
	})
	assert.Equal(t, "198.51.100.7", ipv4)
}
