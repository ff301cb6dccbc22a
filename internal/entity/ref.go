package entity

import "fmt"

// Record references are part of the compatibility contract: a manifest written
// through one store backend must resolve its chunk records through another.
// Stores treat a reference as an opaque key and never parse it back.

// ChunkRef returns the record reference for one chunk,
// e.g. "report.pdf_02_04.json".
func ChunkRef(fileName string, number, total int) string {
	return fmt.Sprintf("%s_%02d_%02d.json", fileName, number, total)
}

// ManifestRef returns the record reference for a file's manifest.
func ManifestRef(fileName string) string {
	return fileName + "_metadata.json"
}
