package entity

import (
	"encoding/hex"
	"fmt"

	"github.com/qbin-dev/mailchunk/internal/common"
)

// Chunk is one contiguous slice of a source file, carried as a self-describing
// record. Payload holds the raw bytes and is never serialized; Data is its hex
// encoding as written to the chunk record.
type Chunk struct {
	FileName string `json:"file_name"`
	Number   int    `json:"chunk_number"`
	Total    int    `json:"total_chunks"`
	Checksum string `json:"chunk_checksum"`
	Data     string `json:"chunk_data"`
	Payload  []byte `json:"-"`
}

// EncodePayload fills Data with the hex form of Payload.
func (c *Chunk) EncodePayload() {
	c.Data = hex.EncodeToString(c.Payload)
}

// DecodePayload decodes Data back to raw bytes. It does not verify the
// checksum; that is the assembler's job.
func (c *Chunk) DecodePayload() ([]byte, error) {
	payload, err := hex.DecodeString(c.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}

	return payload, nil
}

// Validate checks that the record carries every required field. A record with
// fields missing must fail loudly instead of defaulting them.
func (c *Chunk) Validate() error {
	if c.FileName == "" || c.Checksum == "" || c.Number < 1 || c.Total < 1 || c.Number > c.Total {
		return fmt.Errorf("%w: missing or inconsistent required fields", common.ErrDecode)
	}

	return nil
}
