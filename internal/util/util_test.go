package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"uuid id", "0b1f3c9e-5a7d-4b2c-9e1f-2d3c4b5a6978", "0b1f3c9e-5a7d-4b2c-9e1f-2d3c4b5a6978.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, DescriptorKey(tt.id))
		})
	}
}

func TestSidecarKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		artifactKey string
		want        string
	}{
		{"png artifact", "abc123.png", "abc123.json"},
		{"no extension", "abc123", "abc123.json"},
		{"dotted base", "abc.v2.png", "abc.v2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, SidecarKey(tt.artifactKey))
		})
	}
}

func TestBaseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		artifactKey string
		want        string
	}{
		{"png artifact", "abc123.png", "abc123"},
		{"no extension", "abc123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, BaseID(tt.artifactKey))
		})
	}
}
