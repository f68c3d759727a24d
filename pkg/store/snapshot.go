package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/golang/snappy"

	"github.com/openagora/agora/pkg/layout"
)

// Snapshot wire format: [version:1][checksum:4][snappy payload:N].
// The checksum covers the uncompressed JSON so corruption is caught
// after decompression, matching where decode failures actually bite.
const snapshotVersion = 1

var (
	ErrSnapshotTooShort = errors.New("snapshot data too short")
	ErrSnapshotVersion  = errors.New("unsupported snapshot version")
	ErrSnapshotChecksum = errors.New("snapshot checksum mismatch")
)

// EncodeSnapshot serializes a layout result for storage: JSON encoded,
// snappy compressed, framed with a version byte and a CRC32 checksum.
func EncodeSnapshot(result *layout.Result) ([]byte, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	checksum := crc32.ChecksumIEEE(raw)
	compressed := snappy.Encode(nil, raw)

	buf := make([]byte, 5+len(compressed))
	buf[0] = snapshotVersion
	binary.BigEndian.PutUint32(buf[1:5], checksum)
	copy(buf[5:], compressed)
	return buf, nil
}

// DecodeSnapshot reverses EncodeSnapshot, verifying the version byte
// and the checksum of the decompressed payload.
func DecodeSnapshot(data []byte) (*layout.Result, error) {
	if len(data) < 5 {
		return nil, ErrSnapshotTooShort
	}
	if data[0] != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, data[0])
	}

	raw, err := snappy.Decode(nil, data[5:])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	if crc32.ChecksumIEEE(raw) != binary.BigEndian.Uint32(data[1:5]) {
		return nil, ErrSnapshotChecksum
	}

	var result layout.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &result, nil
}
