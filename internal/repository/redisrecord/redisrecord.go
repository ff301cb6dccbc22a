package redisrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qbin-dev/mailchunk/internal/common"
	"github.com/qbin-dev/mailchunk/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "mc"
	keyManifest = "m" // STRING. mc:m:{manifest_ref} -> manifest JSON
	keyChunk    = "c" // STRING. mc:c:{chunk_ref} -> chunk JSON

	keySeparator = ":"
)

// recordStore stages manifest and chunk records in Redis, keyed by record
// reference, so another machine can pick them up and send them on.
type recordStore struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewStore(cl *redis.Client, log *slog.Logger) *recordStore {
	return &recordStore{
		cl:  cl,
		log: log.With(slog.String("item", "RedisRecordStore")),
	}
}

func (r *recordStore) SaveManifest(ctx context.Context, m *entity.Manifest) error {
	ref := entity.ManifestRef(m.FileName)
	if err := r.set(ctx, getKey(keyManifest, ref), m); err != nil {
		return fmt.Errorf("cannot save manifest %s: %w", ref, err)
	}

	r.log.Info("Saved manifest", slog.String("ref", ref), slog.Int("chunk_count", len(m.Chunks)))

	return nil
}

func (r *recordStore) SaveChunk(ctx context.Context, c *entity.Chunk) error {
	ref := entity.ChunkRef(c.FileName, c.Number, c.Total)
	if err := r.set(ctx, getKey(keyChunk, ref), c); err != nil {
		return fmt.Errorf("cannot save chunk %s: %w", ref, err)
	}

	return nil
}

func (r *recordStore) LoadManifest(ctx context.Context, ref string) (*entity.Manifest, error) {
	val, err := r.cl.Get(ctx, getKey(keyManifest, ref)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("manifest %s: %w", ref, common.ErrManifestNotFound)
		}

		return nil, fmt.Errorf("cannot get manifest %s: %w", ref, err)
	}

	var m entity.Manifest
	if err := json.Unmarshal([]byte(val), &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w: %v", ref, common.ErrManifestMalformed, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", ref, err)
	}

	return &m, nil
}

func (r *recordStore) LoadChunk(ctx context.Context, ref string) (*entity.Chunk, error) {
	val, err := r.cl.Get(ctx, getKey(keyChunk, ref)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("chunk %s: %w", ref, common.ErrChunkMissing)
		}

		return nil, fmt.Errorf("cannot get chunk %s: %w", ref, err)
	}

	var c entity.Chunk
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, fmt.Errorf("chunk %s: %w: %v", ref, common.ErrDecode, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("chunk %s: %w", ref, err)
	}

	return &c, nil
}

func (r *recordStore) set(ctx context.Context, key string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("cannot marshal record: %w", err)
	}

	if _, err := r.cl.Set(ctx, key, data, 0).Result(); err != nil {
		return fmt.Errorf("cannot set key %s: %w", key, err)
	}

	return nil
}

func getKey(keys ...string) string {
	return strings.Join(append([]string{keyPrefix}, keys...), keySeparator)
}
