package job

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/imageforge/gateway/model"
	"github.com/stretchr/testify/require"
)

func sampleRequest() model.JobRequest {
	return model.JobRequest{
		Height: 512,
		Width:  512,
		Steps:  20,
		Seed:   0,
		CFG:    5,
		Prompt: "a cat",
		Model:  "flux",
	}
}

func TestBuildAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		desc, _, err := Build(sampleRequest())
		require.NoError(t, err)

		_, err = uuid.Parse(desc.ID)
		require.NoError(t, err, "id must be a well-formed uuid")

		_, dup := seen[desc.ID]
		require.False(t, dup, "duplicate id %s", desc.ID)
		seen[desc.ID] = struct{}{}
	}
}

func TestBuildResolvesSentinelSeed(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		desc, _, err := Build(sampleRequest())
		require.NoError(t, err)
		require.Greater(t, desc.Seed, int64(0))
		require.LessOrEqual(t, desc.Seed, int64(maxSeed))
	}
}

func TestBuildKeepsExplicitSeed(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Seed = 42

	desc, _, err := Build(req)
	require.NoError(t, err)
	require.Equal(t, int64(42), desc.Seed)
}

func TestBuildEncodesDescriptorOnce(t *testing.T) {
	t.Parallel()

	desc, body, err := Build(sampleRequest())
	require.NoError(t, err)

	expected, err := json.Marshal(desc)
	require.NoError(t, err)
	require.Equal(t, expected, body)

	var roundTrip model.JobDescriptor
	require.NoError(t, json.Unmarshal(body, &roundTrip))
	require.Equal(t, desc, roundTrip)
}
