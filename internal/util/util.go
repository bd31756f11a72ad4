package util

import (
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DescriptorKey is the object key a job descriptor is persisted under.
func DescriptorKey(id string) string {
	return fmt.Sprintf("%s.json", id)
}

// SidecarKey derives the metadata key for an artifact by swapping its
// extension for .json. A worker overwrites the original descriptor in place
// with the final metadata, so both share one key.
func SidecarKey(artifactKey string) string {
	return strings.TrimSuffix(artifactKey, path.Ext(artifactKey)) + ".json"
}

// BaseID strips the extension from an artifact key; the remainder is the job
// id the artifact was produced for.
func BaseID(artifactKey string) string {
	return strings.TrimSuffix(artifactKey, path.Ext(artifactKey))
}

func RecordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
