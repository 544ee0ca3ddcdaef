package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// NodeID derives the stable identity for a symbol. The digest is keyed on
// (filePath, kind, name, startLine) so an unchanged file always reproduces
// the same ids, and editing a body without moving the declaration keeps the
// id intact. SHA-256 truncated to 16 bytes keeps collisions vanishingly
// rare within one repository.
func NodeID(filePath string, kind NodeKind, name string, startLine int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s\x00%d", filePath, kind, name, startLine))
	return string(kind) + ":" + hex.EncodeToString(sum[:16])
}

// FileScopeID is the sentinel id used as the from-node of references emitted
// at file scope. Liquid templates emit the matching file node; code files
// leave it to the store.
func FileScopeID(filePath string) string {
	return NodeID(filePath, KindFile, filePath, 1)
}

// QualifiedName joins the file path, the enclosing scope names from outer to
// inner, and the symbol's own name.
func QualifiedName(filePath string, scopes []string, name string) string {
	parts := make([]string, 0, len(scopes)+2)
	parts = append(parts, filePath)
	parts = append(parts, scopes...)
	parts = append(parts, name)
	return strings.Join(parts, "::")
}

// ContentHash is the full SHA-256 of a file's bytes, used for incremental
// skip decisions. Equal hashes imply no re-extraction is needed.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
