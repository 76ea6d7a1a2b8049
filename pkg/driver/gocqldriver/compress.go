package gocqldriver

import (
	"encoding/binary"

	"github.com/gocql/gocql"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/grafana/cassbridge/pkg/driver"
)

func newCompressor(c driver.Compression) gocql.Compressor {
	switch c {
	case driver.CompressionLZ4:
		return LZ4Compressor{}
	case driver.CompressionSnappy:
		return gocql.SnappyCompressor{}
	default:
		return nil
	}
}

// LZ4Compressor implements the native protocol lz4 frame body compression:
// the uncompressed length as a 4 byte big-endian integer followed by a raw
// lz4 block.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return "lz4" }

func (LZ4Compressor) Encode(data []byte) ([]byte, error) {
	buf := make([]byte, 4+lz4.CompressBlockBound(len(data)))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	if len(data) == 0 {
		return buf[:4], nil
	}
	var c lz4.Compressor
	n, err := c.CompressBlock(data, buf[4:])
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	if n == 0 {
		return nil, errors.New("lz4 compress: incompressible block")
	}
	return buf[:4+n], nil
}

func (LZ4Compressor) Decode(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.Errorf("lz4 decompress: frame of %d bytes is too short", len(data))
	}
	size := binary.BigEndian.Uint32(data)
	if size == 0 {
		return nil, nil
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(data[4:], out)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress")
	}
	if n != int(size) {
		return nil, errors.Errorf("lz4 decompress: expected %d bytes, got %d", size, n)
	}
	return out, nil
}
