package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformIsValid(t *testing.T) {
	for _, p := range AllPlatforms() {
		assert.True(t, p.IsValid(), "platform %s should be valid", p)
	}

	assert.False(t, Platform("mastodon").IsValid())
	assert.False(t, Platform("").IsValid())
	assert.False(t, Platform("GitHub").IsValid(), "platform values are lowercase")
}

func TestParsePlatform(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := ParsePlatform("github")
		require.NoError(t, err)
		assert.Equal(t, PlatformGitHub, p)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParsePlatform("myspace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid platform")
	})
}

func TestFetchStatus(t *testing.T) {
	assert.True(t, FetchPending.IsValid())
	assert.True(t, FetchSuccess.IsValid())
	assert.True(t, FetchFailed.IsValid())
	assert.False(t, FetchStatus("done").IsValid())

	status, err := ParseFetchStatus("failed")
	require.NoError(t, err)
	assert.Equal(t, FetchFailed, status)

	_, err = ParseFetchStatus("unknown")
	require.Error(t, err)
}

func TestSentiment(t *testing.T) {
	assert.True(t, SentimentPositive.IsValid())
	assert.True(t, Sentiment("").IsValid(), "unset sentiment is valid")
	assert.False(t, Sentiment("mixed").IsValid())
}
