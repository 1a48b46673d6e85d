package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for log lines
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Domain-specific hash types
type (
	DatasetFingerprint Hash
	ClassificationHash Hash
)

func (h DatasetFingerprint) String() string { return Hash(h).String() }
func (h ClassificationHash) String() string { return Hash(h).String() }

// ComputeDatasetFingerprint hashes headers and cell values in row order.
// Unit and record separators keep "a,b" distinct from "a","b".
func ComputeDatasetFingerprint(headers []string, rows [][]string) DatasetFingerprint {
	var data strings.Builder
	data.WriteString(strings.Join(headers, "\x1f"))
	data.WriteByte('\x1e')
	for _, row := range rows {
		data.WriteString(strings.Join(row, "\x1f"))
		data.WriteByte('\x1e')
	}
	return DatasetFingerprint(NewHash([]byte(data.String())))
}

// ComputeClassificationHash hashes a category -> columns mapping independent of map iteration order.
func ComputeClassificationHash(groups map[string][]string) ClassificationHash {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteByte('=')
		data.WriteString(strings.Join(groups[key], "\x1f"))
		data.WriteByte('\x1e')
	}
	return ClassificationHash(NewHash([]byte(data.String())))
}
