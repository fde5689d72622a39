package yahoo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetadata map[string]map[string]interface{}

func (f fakeMetadata) LeagueMetadata(_ context.Context, key string) (map[string]interface{}, error) {
	meta, ok := f[key]
	if !ok {
		return nil, &APIError{Method: "GET", URL: "/league/" + key, Status: 400, Body: "league not found"}
	}
	return meta, nil
}

func TestRenewToKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"390_123456", "390.l.123456"},
		{" 414_7 ", "414.l.7"},
		{"", ""},
		{"garbage", ""},
		{"_123", ""},
		{"423.l.9", "423.l.9"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RenewToKey(tt.in), "RenewToKey(%q)", tt.in)
	}
}

func TestDiscoverKeys_WalksChainNewestFirst(t *testing.T) {
	f := fakeMetadata{
		"423.l.1": {"season": "2023", "renew": "414_1"},
		"414.l.1": {"season": "2022", "renew": "406_1"},
		"406.l.1": {"season": "2021", "renew": ""},
	}
	keys, err := DiscoverKeys(context.Background(), f, "423.l.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"423.l.1", "414.l.1", "406.l.1"}, keys)
}

func TestDiscoverKeys_StopsOnCycle(t *testing.T) {
	f := fakeMetadata{
		"423.l.1": {"renew": "414_1"},
		"414.l.1": {"renew": "423_1"},
	}
	keys, err := DiscoverKeys(context.Background(), f, "423.l.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"423.l.1", "414.l.1"}, keys)
}

func TestDiscoverKeys_ErrorKeepsPartialChain(t *testing.T) {
	f := fakeMetadata{"423.l.1": {"renew": "414_1"}}
	keys, err := DiscoverKeys(context.Background(), f, "423.l.1")
	require.Error(t, err)
	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, []string{"423.l.1"}, keys)
}

func TestFindLeagueKey(t *testing.T) {
	leagues := []map[string]interface{}{
		{"league_id": "55", "league_key": "414.l.55", "season": "2022"},
		{"league_id": "55", "league_key": "423.l.55", "season": "2023"},
		{"league_id": "77", "league_key": "423.l.77", "season": "2023"},
	}
	key, ok := FindLeagueKey(leagues, "55")
	require.True(t, ok)
	assert.Equal(t, "423.l.55", key)

	_, ok = FindLeagueKey(leagues, "99")
	assert.False(t, ok)
}
