package entity

import (
	"fmt"
	"slices"

	"github.com/qbin-dev/mailchunk/internal/common"
)

// ManifestEntry references one chunk record. The checksum here is the trusted
// copy: a chunk record that disagrees with it has been replaced or damaged.
type ManifestEntry struct {
	ChunkFile string `json:"chunk_file"`
	Number    int    `json:"chunk_number"`
	Total     int    `json:"total_chunks"`
	Checksum  string `json:"chunk_checksum"`
}

// Manifest is the ordered index of all chunk records belonging to one source
// file, plus the whole-file checksum used to verify the reassembled output.
type Manifest struct {
	FileName string          `json:"file_name"`
	Checksum string          `json:"file_checksum"`
	Chunks   []ManifestEntry `json:"chunks"`
}

// SortedChunks returns the entries ordered by chunk number. Record order on
// disk is never trusted; only the explicit number field is.
func (m *Manifest) SortedChunks() []ManifestEntry {
	entries := slices.Clone(m.Chunks)
	slices.SortFunc(entries, func(a, b ManifestEntry) int {
		return a.Number - b.Number
	})

	return entries
}

// Validate checks the structural invariants: a non-empty identity and chunk
// numbers forming a contiguous run from 1 to a consistent total.
func (m *Manifest) Validate() error {
	if m.FileName == "" || m.Checksum == "" {
		return fmt.Errorf("%w: missing required fields", common.ErrManifestMalformed)
	}

	entries := m.SortedChunks()
	if len(entries) < 1 {
		return fmt.Errorf("%w: no chunk entries", common.ErrManifestMalformed)
	}

	total := entries[0].Total
	if total != len(entries) {
		return fmt.Errorf("%w: %d entries but total_chunks is %d", common.ErrManifestMalformed, len(entries), total)
	}

	for i, e := range entries {
		if e.Number != i+1 {
			return fmt.Errorf("%w: chunk numbers are not a contiguous run from 1 to %d", common.ErrManifestMalformed, total)
		}

		if e.Total != total {
			return fmt.Errorf("%w: inconsistent total_chunks at chunk %d", common.ErrManifestMalformed, e.Number)
		}

		if e.ChunkFile == "" || e.Checksum == "" {
			return fmt.Errorf("%w: missing fields at chunk %d", common.ErrManifestMalformed, e.Number)
		}
	}

	return nil
}
