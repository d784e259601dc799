package migration

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/folionet/casfolio/backend/internal/apperrors"
)

// DecodedAsset holds the binary form of a legacy payload together with its
// content checksum
type DecodedAsset struct {
	Data     []byte
	Checksum string
}

// DecodeAssetPayload decodes a base64-encoded legacy payload into raw bytes
// and computes its sha256 checksum. A missing or empty payload returns nil
// without error: the legacy record simply had no file. A payload that fails
// to decode is a fatal migration error, because silently dropping a user's
// asset would be silent data loss.
func DecodeAssetPayload(encoded string) (*DecodedAsset, error) {
	trimmed := strings.TrimSpace(encoded)
	if trimmed == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, apperrors.NewMigrationError(apperrors.ErrMsgCorruptPayload, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	sum := sha256.Sum256(data)
	return &DecodedAsset{
		Data:     data,
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}
