package splitter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/qbin-dev/mailchunk/internal/common"
	"github.com/qbin-dev/mailchunk/internal/entity"
	"github.com/qbin-dev/mailchunk/internal/util"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func patternBytes(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}

	return data
}

func TestSplit(t *testing.T) {
	testCases := []struct {
		name         string
		src          []byte
		chunkSize    int
		expectedLens []int
	}{
		{
			name:         "single byte",
			src:          []byte{0x41},
			chunkSize:    3,
			expectedLens: []int{1},
		},
		{
			name:         "exact multiple",
			src:          patternBytes(9),
			chunkSize:    3,
			expectedLens: []int{3, 3, 3},
		},
		{
			name:         "ten bytes in threes",
			src:          []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09},
			chunkSize:    3,
			expectedLens: []int{3, 3, 3, 1},
		},
		{
			name:         "chunk size larger than file",
			src:          patternBytes(4),
			chunkSize:    100,
			expectedLens: []int{4},
		},
		{
			name:         "empty file travels as one empty chunk",
			src:          nil,
			chunkSize:    3,
			expectedLens: []int{0},
		},
	}

	srv := NewSplitterService(4, testLogger())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			manifest, chunks, err := srv.Split(context.Background(), tc.src, "test.bin", tc.chunkSize)
			require.NoError(t, err)
			require.Len(t, chunks, len(tc.expectedLens))
			require.Len(t, manifest.Chunks, len(tc.expectedLens))
			require.NoError(t, manifest.Validate())

			total := len(tc.expectedLens)
			var concat []byte
			for i, chunk := range chunks {
				require.Equal(t, "test.bin", chunk.FileName)
				require.Equal(t, i+1, chunk.Number)
				require.Equal(t, total, chunk.Total)
				require.Len(t, chunk.Payload, tc.expectedLens[i])
				require.Equal(t, util.Checksum(chunk.Payload), chunk.Checksum)
				require.Equal(t, fmt.Sprintf("%x", chunk.Payload), chunk.Data)

				entry := manifest.Chunks[i]
				require.Equal(t, entity.ChunkRef("test.bin", i+1, total), entry.ChunkFile)
				require.Equal(t, i+1, entry.Number)
				require.Equal(t, total, entry.Total)
				require.Equal(t, chunk.Checksum, entry.Checksum)

				concat = append(concat, chunk.Payload...)
			}

			require.Equal(t, append([]byte(nil), tc.src...), append([]byte(nil), concat...))
			require.Equal(t, util.Checksum(tc.src), manifest.Checksum)
		})
	}
}

func TestSplitChunkCount(t *testing.T) {
	srv := NewSplitterService(4, testLogger())

	const chunkSize = 7
	for size := 1; size <= 50; size++ {
		_, chunks, err := srv.Split(context.Background(), patternBytes(size), "count.bin", chunkSize)
		require.NoError(t, err)
		require.Len(t, chunks, (size+chunkSize-1)/chunkSize, "size %d", size)
	}
}

func TestSplitInvalidInput(t *testing.T) {
	srv := NewSplitterService(4, testLogger())

	_, _, err := srv.Split(context.Background(), patternBytes(10), "test.bin", 0)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = srv.Split(context.Background(), patternBytes(10), "test.bin", -3)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = srv.Split(context.Background(), patternBytes(10), "", 3)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSplitDeterministic(t *testing.T) {
	srv := NewSplitterService(8, testLogger())
	src := patternBytes(10 * 1024)

	m1, chunks1, err := srv.Split(context.Background(), src, "det.bin", 333)
	require.NoError(t, err)

	m2, chunks2, err := srv.Split(context.Background(), src, "det.bin", 333)
	require.NoError(t, err)

	require.Equal(t, m1, m2)
	require.Equal(t, chunks1, chunks2)
}

func TestSplitParallelOrdering(t *testing.T) {
	// Many small chunks on many workers; the output order must still be
	// ascending by chunk number.
	srv := NewSplitterService(16, testLogger())
	src := patternBytes(4096)

	_, chunks, err := srv.Split(context.Background(), src, "par.bin", 5)
	require.NoError(t, err)

	var concat []byte
	for i, chunk := range chunks {
		require.Equal(t, i+1, chunk.Number)
		concat = append(concat, chunk.Payload...)
	}

	require.Equal(t, src, concat)
}

func TestSplitCanceledContext(t *testing.T) {
	srv := NewSplitterService(2, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := srv.Split(ctx, patternBytes(1024), "ctx.bin", 10)
	require.ErrorIs(t, err, context.Canceled)
}
