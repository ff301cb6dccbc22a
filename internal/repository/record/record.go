package record

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/qbin-dev/mailchunk/internal/common"
	"github.com/qbin-dev/mailchunk/internal/entity"
	"github.com/spf13/afero"
)

const (
	recordPerm = 0o644
	jsonIndent = "    "
)

// recordStore keeps manifest and chunk records as JSON files in a single
// work directory, one file per record, named by the record reference.
type recordStore struct {
	fs      afero.Fs
	workDir string
	log     *slog.Logger
}

func NewStore(workDir string, log *slog.Logger) *recordStore {
	return NewStoreWithFS(afero.NewOsFs(), workDir, log)
}

func NewStoreWithFS(fs afero.Fs, workDir string, log *slog.Logger) *recordStore {
	return &recordStore{
		fs:      fs,
		workDir: workDir,
		log:     log.With(slog.String("item", "RecordStore")),
	}
}

func (s *recordStore) SaveManifest(ctx context.Context, m *entity.Manifest) error {
	ref := entity.ManifestRef(m.FileName)
	if err := s.write(ref, m); err != nil {
		return fmt.Errorf("cannot save manifest %s: %w", ref, err)
	}

	s.log.Info("Saved manifest", slog.String("ref", ref), slog.Int("chunk_count", len(m.Chunks)))

	return nil
}

func (s *recordStore) SaveChunk(ctx context.Context, c *entity.Chunk) error {
	ref := entity.ChunkRef(c.FileName, c.Number, c.Total)
	if err := s.write(ref, c); err != nil {
		return fmt.Errorf("cannot save chunk %s: %w", ref, err)
	}

	return nil
}

func (s *recordStore) LoadManifest(ctx context.Context, ref string) (*entity.Manifest, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.workDir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", ref, common.ErrManifestNotFound)
		}

		return nil, fmt.Errorf("cannot read manifest %s: %w", ref, err)
	}

	var m entity.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w: %v", ref, common.ErrManifestMalformed, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", ref, err)
	}

	return &m, nil
}

func (s *recordStore) LoadChunk(ctx context.Context, ref string) (*entity.Chunk, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(s.workDir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("chunk %s: %w", ref, common.ErrChunkMissing)
		}

		return nil, fmt.Errorf("cannot read chunk %s: %w", ref, err)
	}

	var c entity.Chunk
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("chunk %s: %w: %v", ref, common.ErrDecode, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("chunk %s: %w", ref, err)
	}

	return &c, nil
}

func (s *recordStore) write(ref string, record any) error {
	data, err := json.MarshalIndent(record, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("cannot marshal record: %w", err)
	}

	if err := afero.WriteFile(s.fs, filepath.Join(s.workDir, ref), data, recordPerm); err != nil {
		return fmt.Errorf("cannot write record: %w", err)
	}

	return nil
}
