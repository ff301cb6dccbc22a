package util

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/google/uuid"
)

const runIDLen = 8

// Checksum returns the md5 digest of data as a hex string. md5 is the digest
// the record format is built around; it guards against corruption and
// accidental substitution, not against an adversary forging collisions.
func Checksum(data []byte) string {
	sum := md5.Sum(data)

	return hex.EncodeToString(sum[:])
}

// RunID returns a short identifier to correlate the log lines of one run.
func RunID() string {
	return uuid.NewString()[:runIDLen]
}
