package journal

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// codec encodes entries as zstd-compressed JSON. EncodeAll and DecodeAll
// are safe for concurrent use.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
	)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) encode(entry *Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshaling entry: %w", err)
	}
	return c.enc.EncodeAll(data, nil), nil
}

func (c *codec) decode(value []byte) (*Entry, error) {
	data, err := c.dec.DecodeAll(value, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling entry: %w", err)
	}
	return &entry, nil
}

func (c *codec) close() error {
	c.dec.Close()
	return c.enc.Close()
}
