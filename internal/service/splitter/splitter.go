package splitter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qbin-dev/mailchunk/internal/common"
	"github.com/qbin-dev/mailchunk/internal/entity"
	"github.com/qbin-dev/mailchunk/internal/util"
)

const serviceName = "splitter"

type SplitterService struct {
	workers int
	log     *slog.Logger
}

func NewSplitterService(workers int, log *slog.Logger) *SplitterService {
	if workers < 1 {
		workers = 1
	}

	return &SplitterService{
		workers: workers,
		log:     log.With(slog.String("service", serviceName)),
	}
}

// Split partitions src into chunks of chunkSize bytes, the last chunk holding
// the remainder. An empty src yields a single zero-length chunk, so empty
// files still round-trip. Partitions are digested and encoded on a worker
// pool; the returned chunks and manifest entries are in ascending chunk
// number order regardless of which worker finished first. Splitting the same
// input with the same chunk size always yields identical output.
func (s *SplitterService) Split(ctx context.Context, src []byte, fileName string, chunkSize int) (*entity.Manifest, []*entity.Chunk, error) {
	if chunkSize < 1 {
		return nil, nil, fmt.Errorf("%w: chunk size %d is not positive", common.ErrInvalidInput, chunkSize)
	}

	if fileName == "" {
		return nil, nil, fmt.Errorf("%w: empty file name", common.ErrInvalidInput)
	}

	total := (len(src) + chunkSize - 1) / chunkSize
	if total < 1 {
		total = 1
	}

	in := make(chan int, total)
	out := make(chan *entity.Chunk, total)

	for number := 1; number <= total; number++ {
		in <- number
	}
	close(in)

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for n := 0; n < s.workers; n++ {
		go s.worker(ctx, src, fileName, chunkSize, total, in, out, &wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	chunks := make([]*entity.Chunk, total)
	for chunk := range out {
		chunks[chunk.Number-1] = chunk
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	entries := make([]entity.ManifestEntry, total)
	for i, chunk := range chunks {
		entries[i] = entity.ManifestEntry{
			ChunkFile: entity.ChunkRef(fileName, chunk.Number, total),
			Number:    chunk.Number,
			Total:     total,
			Checksum:  chunk.Checksum,
		}
	}

	manifest := &entity.Manifest{
		FileName: fileName,
		Checksum: util.Checksum(src),
		Chunks:   entries,
	}

	s.log.Info("Split complete",
		slog.String("file_name", fileName),
		slog.Int("size", len(src)),
		slog.Int("chunk_size", chunkSize),
		slog.Int("total_chunks", total))

	return manifest, chunks, nil
}

func (s *SplitterService) worker(ctx context.Context, src []byte, fileName string, chunkSize, total int, in chan int, out chan *entity.Chunk, wg *sync.WaitGroup) {
	defer wg.Done()

	for number := range in {
		start := (number - 1) * chunkSize
		end := start + chunkSize
		if end > len(src) {
			end = len(src)
		}
		payload := src[start:end]

		chunk := &entity.Chunk{
			FileName: fileName,
			Number:   number,
			Total:    total,
			Checksum: util.Checksum(payload),
			Payload:  payload,
		}
		chunk.EncodePayload()

		select {
		case <-ctx.Done():
			return
		case out <- chunk:
		}
	}
}
