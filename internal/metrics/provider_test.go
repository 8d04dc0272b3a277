package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	for _, namespace := range []string{"roleguard", ""} {
		provider, err := NewProvider(namespace)
		require.NoError(t, err, namespace)
		assert.NotNil(t, provider.MeterProvider())
		assert.NotNil(t, provider.registry)
	}
}

func TestProvider_ScrapeIncludesRuntimeCollectors(t *testing.T) {
	provider, err := NewProvider("roleguard")
	require.NoError(t, err)

	output := scrape(t, provider)
	assert.Contains(t, output, "go_goroutines")
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("roleguard")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	var empty Provider
	assert.NoError(t, empty.Shutdown(context.Background()))
}
