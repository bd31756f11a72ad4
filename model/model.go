package model

import "time"

// JobRequest is the incoming API payload before validation. Every field is
// client-supplied and untrusted.
type JobRequest struct {
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	Steps          int     `json:"steps"`
	Seed           int64   `json:"seed"`
	CFG            float64 `json:"cfg"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt"`
	Model          string  `json:"model"`
}

// JobDescriptor is the server-finalized record of a job. The same serialized
// bytes are written to storage at {id}.json and published to the queue, so a
// worker and an auditor never see divergent views of one job.
type JobDescriptor struct {
	ID             string  `json:"id"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	Steps          int     `json:"steps"`
	Seed           int64   `json:"seed"`
	CFG            float64 `json:"cfg"`
	Prompt         string  `json:"prompt"`
	NegativePrompt string  `json:"negativePrompt"`
	Model          string  `json:"model"`
}

// SidecarMetadata is the companion JSON a worker leaves next to an artifact.
// It shares the artifact's base name; all fields are optional.
type SidecarMetadata struct {
	Prompt         *string  `json:"prompt"`
	Height         *int     `json:"height"`
	Width          *int     `json:"width"`
	Steps          *int     `json:"steps"`
	Seed           *int64   `json:"seed"`
	CFG            *float64 `json:"cfg"`
	NegativePrompt *string  `json:"negativePrompt"`
	Model          *string  `json:"model"`
	Elapsed        *float64 `json:"elapsed"`
}

// ArtifactRecord is one produced output file plus whatever sidecar metadata
// could be loaded for it. Enriched fields stay null when the sidecar is
// missing or unreadable.
type ArtifactRecord struct {
	Filename       string    `json:"filename"`
	URL            string    `json:"url"`
	ID             string    `json:"uuid"`
	Timestamp      time.Time `json:"timestamp"`
	Prompt         *string   `json:"prompt"`
	Height         *int      `json:"height"`
	Width          *int      `json:"width"`
	Steps          *int      `json:"steps"`
	Seed           *int64    `json:"seed"`
	CFG            *float64  `json:"cfg"`
	NegativePrompt *string   `json:"negativePrompt"`
	Model          *string   `json:"model"`
	Elapsed        *float64  `json:"elapsed"`
}

// QueueSnapshot is a point-in-time depth reading for one queue lane.
type QueueSnapshot struct {
	QueueName         string `json:"queueName"`
	MessagesAvailable uint64 `json:"messagesAvailable"`
	MessagesInFlight  uint64 `json:"messagesInFlight"`
}

// SubmittedJob is one entry of the client-side recency log. The log is a
// cache bridging "submitted" and "first seen in the listing", never a source
// of truth.
type SubmittedJob struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}
