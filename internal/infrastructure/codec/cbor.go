// Package codec encodes app configurations into their distributed payload.
package codec

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/reglet-dev/distribution/internal/domain/entities"
)

// CBOREncoder encodes with Core Deterministic Encoding (RFC 8949 §4.2):
// same configuration, same bytes.
type CBOREncoder struct {
	enc cbor.EncMode
}

// NewCBOREncoder builds the encoder.
func NewCBOREncoder() (*CBOREncoder, error) {
	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	enc, err := encOptions.EncMode()
	if err != nil {
		return nil, fmt.Errorf("codec: CBOR encoder initialization failed: %w", err)
	}

	return &CBOREncoder{enc: enc}, nil
}

// Encode implements ports.PayloadEncoder.
func (c *CBOREncoder) Encode(cfg *entities.ApplicationConfiguration) ([]byte, error) {
	if cfg == nil {
		return nil, errors.New("codec: config is nil")
	}
	data, err := c.enc.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("codec: encode app config: %w", err)
	}
	return data, nil
}
