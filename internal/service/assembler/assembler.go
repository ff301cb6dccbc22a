package assembler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/qbin-dev/mailchunk/internal/common"
	"github.com/qbin-dev/mailchunk/internal/entity"
	"github.com/qbin-dev/mailchunk/internal/util"
)

const serviceName = "assembler"

// ChunkLoader reads one chunk record from whatever store holds it.
type ChunkLoader interface {
	LoadChunk(ctx context.Context, ref string) (*entity.Chunk, error)
}

type AssemblerService struct {
	log *slog.Logger
}

func NewAssemblerService(log *slog.Logger) *AssemblerService {
	return &AssemblerService{
		log: log.With(slog.String("service", serviceName)),
	}
}

// Reassemble rebuilds the original byte sequence described by the manifest,
// loading chunks in ascending number order and verifying each before moving
// on, so the first damaged chunk is the one reported. Every chunk must match
// both its own checksum and the manifest's copy; the concatenation must match
// the whole-file checksum. Nothing is returned until every check has passed.
func (a *AssemblerService) Reassemble(ctx context.Context, m *entity.Manifest, loader ChunkLoader) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, e := range m.SortedChunks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunk, err := loader.LoadChunk(ctx, e.ChunkFile)
		if err != nil {
			a.log.Error("Cannot load chunk", slog.Int("chunk_number", e.Number), slog.String("chunk_file", e.ChunkFile), slog.Any("error", err))

			return nil, fmt.Errorf("cannot load chunk %d (%s): %w", e.Number, e.ChunkFile, err)
		}

		if chunk.FileName != m.FileName || chunk.Number != e.Number || chunk.Total != e.Total {
			return nil, fmt.Errorf("chunk %d (%s): %w", e.Number, e.ChunkFile, common.ErrChunkIdentityMismatch)
		}

		payload, err := chunk.DecodePayload()
		if err != nil {
			return nil, fmt.Errorf("chunk %d (%s): %w", e.Number, e.ChunkFile, err)
		}

		// A mismatch against the chunk's own checksum is corruption,
		// against the manifest's copy is substitution.
		sum := util.Checksum(payload)
		if sum != chunk.Checksum || sum != e.Checksum {
			return nil, fmt.Errorf("chunk %d (%s): %w", e.Number, e.ChunkFile, common.ErrChunkChecksumMismatch)
		}

		buf.Write(payload)

		a.log.Debug("Chunk verified", slog.Int("chunk_number", e.Number), slog.Int("size", len(payload)))
	}

	if sum := util.Checksum(buf.Bytes()); sum != m.Checksum {
		return nil, fmt.Errorf("file %s: %w", m.FileName, common.ErrFileChecksumMismatch)
	}

	return buf.Bytes(), nil
}
