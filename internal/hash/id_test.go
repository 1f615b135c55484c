package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamKey(t *testing.T) {
	tests := []struct {
		name string
		id   string
		key  uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, StreamKey(tt.id))
		})
	}
}

func TestStreamKey_Distinct(t *testing.T) {
	ids := []string{"gpsData.satellites", "gpsData.lat", "gpsData.lng", "gpsData.alt"}
	seen := make(map[uint64]string, len(ids))
	for _, id := range ids {
		key := StreamKey(id)
		_, dup := seen[key]
		require.False(t, dup, id)
		seen[key] = id
		require.Equal(t, key, StreamKey(id), "key must be stable")
	}
}
