package listing

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imageforge/gateway/internal/cache"
	"github.com/imageforge/gateway/internal/job_tracer"
	"github.com/imageforge/gateway/internal/service/logger"
	"github.com/imageforge/gateway/internal/storage"
	"github.com/imageforge/gateway/internal/util"
	"github.com/imageforge/gateway/model"
)

const cacheKey = "artifacts:recent"

type Service struct {
	storage    storage.Storage
	cache      cache.Cache
	count      int
	suffix     string
	presignTTL time.Duration
}

func NewService(s storage.Storage, c cache.Cache, count int, suffix string, presignTTL time.Duration) *Service {
	return &Service{
		storage:    s,
		cache:      c,
		count:      count,
		suffix:     suffix,
		presignTTL: presignTTL,
	}
}

// Recent returns the most recently modified artifacts, newest first, capped
// at the configured count and enriched from their sidecars. It never fails:
// an unreachable store degrades to an empty list, and a broken sidecar or
// presign only nulls that one record's enriched fields. Callers must treat
// empty as "no data right now", not as proof nothing exists.
func (s *Service) Recent(ctx context.Context) []model.ArtifactRecord {
	tracer := job_tracer.GetTracer()
	ctx, span := tracer.Start(ctx, "Listing/Recent")
	defer span.End()

	cached := []model.ArtifactRecord{}
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached
	}

	objects, err := s.storage.List(ctx)
	if err != nil {
		util.RecordSpanError(span, err)
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("artifact listing failed")
		return []model.ArtifactRecord{}
	}

	artifacts := objects[:0]
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, s.suffix) {
			artifacts = append(artifacts, obj)
		}
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].LastModified.After(artifacts[j].LastModified)
	})
	if len(artifacts) > s.count {
		artifacts = artifacts[:s.count]
	}

	records := make([]model.ArtifactRecord, len(artifacts))

	var wg sync.WaitGroup
	for i, obj := range artifacts {
		wg.Add(1)
		go func(i int, obj storage.ObjectInfo) {
			defer wg.Done()
			records[i] = s.enrich(ctx, obj)
		}(i, obj)
	}
	wg.Wait()

	if err := s.cache.Put(ctx, cacheKey, records, s.cache.GetDefaultTTL()); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("unable to cache artifact listing")
	}

	return records
}

func (s *Service) enrich(ctx context.Context, obj storage.ObjectInfo) model.ArtifactRecord {
	record := model.ArtifactRecord{
		Filename:  obj.Key,
		ID:        util.BaseID(obj.Key),
		Timestamp: obj.LastModified,
	}

	url, err := s.storage.PresignedGet(ctx, obj.Key, s.presignTTL)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("key", obj.Key).Msg("unable to presign artifact")
	} else {
		record.URL = url
	}

	raw, err := s.storage.Download(ctx, util.SidecarKey(obj.Key))
	if err != nil {
		// Missing sidecar is expected for artifacts whose metadata was never
		// written; the record ships with null enrichment.
		return record
	}

	var meta model.SidecarMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("key", obj.Key).Msg("unparseable sidecar")
		return record
	}

	record.Prompt = meta.Prompt
	record.Height = meta.Height
	record.Width = meta.Width
	record.Steps = meta.Steps
	record.Seed = meta.Seed
	record.CFG = meta.CFG
	record.NegativePrompt = meta.NegativePrompt
	record.Model = meta.Model
	record.Elapsed = meta.Elapsed

	return record
}
