package common

import "fmt"

var (
	ErrInvalidInput          = fmt.Errorf("invalid input")
	ErrManifestNotFound      = fmt.Errorf("manifest record not found")
	ErrManifestMalformed     = fmt.Errorf("manifest is malformed")
	ErrChunkMissing          = fmt.Errorf("chunk record not found")
	ErrChunkIdentityMismatch = fmt.Errorf("chunk identity does not match manifest")
	ErrDecode                = fmt.Errorf("cannot decode chunk record")
	ErrChunkChecksumMismatch = fmt.Errorf("chunk checksum mismatch")
	ErrFileChecksumMismatch  = fmt.Errorf("file checksum mismatch")
)
