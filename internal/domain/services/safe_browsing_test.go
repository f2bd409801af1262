package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumosguard/internal/domain/models"
	"lumosguard/internal/domain/services"
	"lumosguard/pkg/logger"
)

func TestGoogleSafeBrowsingClient_RequiresAPIKey(t *testing.T) {
	client := services.NewGoogleSafeBrowsingClient(services.SafeBrowsingConfig{}, logger.Nop())

	_, err := client.CheckURL(context.Background(), "http://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestMockURLSafetyClient(t *testing.T) {
	client := services.NewMockURLSafetyClient()

	result, err := client.CheckURL(context.Background(), "http://malware.testing.google.test/testing/malware/")
	require.NoError(t, err)
	assert.False(t, result.IsSafe)
	assert.Equal(t, models.ThreatTypeMalware, result.ThreatType)

	result, err = client.CheckURL(context.Background(), "http://example.com")
	require.NoError(t, err)
	assert.True(t, result.IsSafe)
	assert.Empty(t, result.ThreatType)
}
