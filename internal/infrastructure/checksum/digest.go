// Package checksum provides the digesters behind the checksum sidecars.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	apperrors "github.com/reglet-dev/distribution/internal/application/errors"
	"github.com/reglet-dev/distribution/internal/domain/structure"
)

// Algorithm names accepted by New.
const (
	SHA256 = "sha256"
	BLAKE3 = "blake3"
)

// SHA256Digester renders lowercase hex SHA-256 digests.
type SHA256Digester struct{}

// Algorithm implements structure.Digester.
func (SHA256Digester) Algorithm() string { return SHA256 }

// Sum implements structure.Digester.
func (SHA256Digester) Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return []byte(hex.EncodeToString(sum[:]))
}

// BLAKE3Digester renders lowercase hex 256-bit BLAKE3 digests.
type BLAKE3Digester struct{}

// Algorithm implements structure.Digester.
func (BLAKE3Digester) Algorithm() string { return BLAKE3 }

// Sum implements structure.Digester.
func (BLAKE3Digester) Sum(data []byte) []byte {
	sum := blake3.Sum256(data)
	return []byte(hex.EncodeToString(sum[:]))
}

// New returns the digester for a configured algorithm name.
func New(algorithm string) (structure.Digester, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case SHA256, "":
		return SHA256Digester{}, nil
	case BLAKE3:
		return BLAKE3Digester{}, nil
	default:
		return nil, apperrors.NewConfigurationError("checksum",
			fmt.Sprintf("unsupported algorithm %q (want %s or %s)", algorithm, SHA256, BLAKE3), nil)
	}
}
