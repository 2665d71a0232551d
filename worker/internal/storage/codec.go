package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/distkv/distkv/worker/internal/errors"
	"github.com/distkv/distkv/worker/internal/model"
)

var crc32Table = crc32.MakeTable(crc32.IEEE)

const checksumSize = 4

// storedValue is the on-disk form of an entry; the key lives in the bucket key
type storedValue struct {
	Value       string            `json:"value"`
	VectorClock model.VectorClock `json:"vector_clock"`
}

// encodeEntry serializes an entry as [json][crc32 little endian]
func encodeEntry(entry model.Entry) ([]byte, error) {
	data, err := json.Marshal(storedValue{Value: entry.Value, VectorClock: entry.VectorClock})
	if err != nil {
		return nil, errors.InternalError("failed to encode entry", err)
	}

	out := make([]byte, len(data)+checksumSize)
	copy(out, data)
	binary.LittleEndian.PutUint32(out[len(data):], crc32.Checksum(data, crc32Table))
	return out, nil
}

// decodeEntry reverses encodeEntry, rejecting truncated or corrupted records
func decodeEntry(key string, raw []byte) (model.Entry, error) {
	if len(raw) < checksumSize {
		return model.Entry{}, errors.CorruptedData(fmt.Sprintf("entry %q is truncated", key), nil)
	}

	data := raw[:len(raw)-checksumSize]
	expected := binary.LittleEndian.Uint32(raw[len(data):])
	if actual := crc32.Checksum(data, crc32Table); actual != expected {
		return model.Entry{}, errors.CorruptedData(
			fmt.Sprintf("checksum mismatch for entry %q: expected %d, got %d", key, expected, actual), nil).
			WithDetail("key", key)
	}

	var sv storedValue
	if err := json.Unmarshal(data, &sv); err != nil {
		return model.Entry{}, errors.CorruptedData(fmt.Sprintf("entry %q is not valid json", key), err)
	}

	return model.Entry{Key: key, Value: sv.Value, VectorClock: sv.VectorClock}, nil
}
