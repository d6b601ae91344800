package ir

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainDocument = "ruki/document/v1"
	DomainOutput   = "ruki/output/v1"
)

// digestWithDomain computes a BLAKE3 digest with domain separation.
// Format: BLAKE3(domain + 0x00 + data)
func digestWithDomain(domain string, data []byte) string {
	h := blake3.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// OutputDigest identifies the bytes an emitter produced.
func OutputDigest(data []byte) string {
	return digestWithDomain(DomainOutput, data)
}

// DocumentDigest identifies a document by its compact JSON encoding.
// Map keys are sorted by encoding/json, so the digest is stable for equal
// documents. Metadata.Created is part of the digest.
func DocumentDigest(doc *Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("DocumentDigest: failed to marshal: %w", err)
	}
	return digestWithDomain(DomainDocument, data), nil
}
