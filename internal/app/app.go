package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/qbin-dev/mailchunk/internal/config"
	"github.com/qbin-dev/mailchunk/internal/entity"
	"github.com/qbin-dev/mailchunk/internal/repository/record"
	"github.com/qbin-dev/mailchunk/internal/repository/redisrecord"
	"github.com/qbin-dev/mailchunk/internal/service/assembler"
	"github.com/qbin-dev/mailchunk/internal/service/splitter"
	"github.com/qbin-dev/mailchunk/internal/util"
	"github.com/redis/go-redis/v9"
)

const (
	outputPrefix = "reassembled_"
	outputPerm   = 0o644

	bytesPerMB = 1 << 20
)

// RecordStore persists and retrieves manifest and chunk records. The core
// services never touch storage directly; everything goes through here.
type RecordStore interface {
	SaveManifest(ctx context.Context, m *entity.Manifest) error
	SaveChunk(ctx context.Context, c *entity.Chunk) error
	LoadManifest(ctx context.Context, ref string) (*entity.Manifest, error)
	LoadChunk(ctx context.Context, ref string) (*entity.Chunk, error)
}

type App struct {
	cfg       *config.Config
	log       *slog.Logger
	store     RecordStore
	splitter  *splitter.SplitterService
	assembler *assembler.AssemblerService
}

func New(cfgPath string) *App {
	cfg := config.MustLoad(cfgPath)

	lo := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))

	var store RecordStore
	switch cfg.Store {
	case config.StoreFS:
		store = record.NewStore(cfg.WorkDir, log)
	case config.StoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			panic(err)
		}

		cl := redis.NewClient(opt)
		if _, err := cl.Ping(context.Background()).Result(); err != nil {
			panic(err)
		}

		store = redisrecord.NewStore(cl, log)
	default:
		panic("unknown store: " + cfg.Store)
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		splitter:  splitter.NewSplitterService(cfg.SplitterConfig.Workers, log),
		assembler: assembler.NewAssemblerService(log),
	}
}

// Chunk splits the file at path into chunk records plus a manifest record.
// A sizeMB of zero means the configured default.
func (a *App) Chunk(ctx context.Context, path string, sizeMB int) error {
	log := a.log.With(slog.String("run_id", util.RunID()), slog.String("op", "chunk"))

	if sizeMB == 0 {
		sizeMB = a.cfg.ChunkSizeMB
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read source file %s: %w", path, err)
	}

	fileName := filepath.Base(path)
	log.Info("Chunking file", slog.String("file_name", fileName), slog.Int("size", len(data)), slog.Int("chunk_size_mb", sizeMB))

	manifest, chunks, err := a.splitter.Split(ctx, data, fileName, sizeMB*bytesPerMB)
	if err != nil {
		return fmt.Errorf("cannot split %s: %w", fileName, err)
	}

	for _, chunk := range chunks {
		if err := a.store.SaveChunk(ctx, chunk); err != nil {
			return fmt.Errorf("cannot save chunk %d of %s: %w", chunk.Number, fileName, err)
		}

		log.Info("Saved chunk", slog.Int("chunk_number", chunk.Number), slog.Int("size", len(chunk.Payload)))
	}

	if err := a.store.SaveManifest(ctx, manifest); err != nil {
		return fmt.Errorf("cannot save manifest for %s: %w", fileName, err)
	}

	fmt.Printf("Chunking complete. Manifest: %s\n", entity.ManifestRef(fileName))

	return nil
}

// Reassemble rebuilds the original file described by the manifest record and
// writes it next to the records, prefixed so the source is never clobbered.
func (a *App) Reassemble(ctx context.Context, manifestRef string) error {
	log := a.log.With(slog.String("run_id", util.RunID()), slog.String("op", "reassemble"))

	manifest, err := a.store.LoadManifest(ctx, manifestRef)
	if err != nil {
		return fmt.Errorf("cannot load manifest %s: %w", manifestRef, err)
	}

	log.Info("Reassembling file", slog.String("file_name", manifest.FileName), slog.Int("total_chunks", len(manifest.Chunks)))

	data, err := a.assembler.Reassemble(ctx, manifest, a.store)
	if err != nil {
		return fmt.Errorf("cannot reassemble %s: %w", manifest.FileName, err)
	}

	outPath := filepath.Join(a.cfg.WorkDir, outputPrefix+manifest.FileName)
	if err := os.WriteFile(outPath, data, outputPerm); err != nil {
		return fmt.Errorf("cannot write output file %s: %w", outPath, err)
	}

	fmt.Printf("Reassembly complete. Checksum verified: %s\n", outPath)

	return nil
}
