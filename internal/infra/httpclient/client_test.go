package httpclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/payments/internal/infra/config"
)

func TestNew(t *testing.T) {
	c := New(config.HTTPClientConfig{
		MaxIdleConnsPerHost: 7,
		ResponseTimeout:     5 * time.Second,
	})

	assert.Equal(t, 5*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, tr.MaxIdleConnsPerHost)
}

func TestWithTimeout(t *testing.T) {
	base := New(config.HTTPClientConfig{ResponseTimeout: 30 * time.Second})

	short := WithTimeout(base, time.Second)
	assert.Equal(t, time.Second, short.Timeout)
	assert.Same(t, base.Transport, short.Transport)
	assert.Equal(t, 30*time.Second, base.Timeout)

	assert.Same(t, base, WithTimeout(base, 0))
}
