package storage

import (
	"context"
	"time"
)

// ObjectInfo is the subset of listing metadata the gateway cares about.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

type Storage interface {
	Upload(context.Context, string, []byte, string) error
	Download(context.Context, string) ([]byte, error)
	List(context.Context) ([]ObjectInfo, error)
	PresignedGet(context.Context, string, time.Duration) (string, error)
	Bucket() string
	Close()
}
