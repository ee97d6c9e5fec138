package logfile

import (
	"encoding/binary"
	"errors"

	"github.com/zeebo/xxh3"

	"github.com/bretuobay/bitlog/internal/compression"
)

// RecordType identifies command kinds in the log.
type RecordType uint8

const (
	RecordSet RecordType = iota + 1
	RecordRemove
)

// Record is a single durable command. Key and Value are always plaintext in
// memory; Encode applies the record's codec to the value and Decode reverses
// it.
type Record struct {
	Type  RecordType
	Codec compression.Type
	Key   []byte
	Value []byte
}

var (
	ErrInvalidRecord    = errors.New("logfile: invalid record")
	ErrChecksumMismatch = errors.New("logfile: checksum mismatch")
)

const checksumSize = 8

// EncodeRecord encodes a record with varint lengths and an XXH3-64 checksum.
//
// Layout: uvarint payloadLen, then
//
//	type(1) codec(1) uvarint(keyLen) uvarint(valueLen) key value xxh3(8)
//
// where value is stored compressed per the codec and valueLen is the stored
// length. The checksum covers every payload byte before it, so a torn write
// anywhere in the record is detected.
func EncodeRecord(record Record) ([]byte, error) {
	value, err := compression.Compress(record.Codec, record.Value)
	if err != nil {
		return nil, err
	}

	keyLen := uint64(len(record.Key))
	valueLen := uint64(len(value))

	payloadLen := 1 + 1 +
		uvarintSize(keyLen) + uvarintSize(valueLen) +
		int(keyLen) + int(valueLen) + checksumSize
	lengthBuf := make([]byte, binary.MaxVarintLen64)
	lengthN := binary.PutUvarint(lengthBuf, uint64(payloadLen))

	payload := make([]byte, payloadLen)
	payload[0] = byte(record.Type)
	payload[1] = byte(record.Codec)
	off := 2
	off += binary.PutUvarint(payload[off:], keyLen)
	off += binary.PutUvarint(payload[off:], valueLen)
	copy(payload[off:], record.Key)
	off += int(keyLen)
	copy(payload[off:], value)
	off += int(valueLen)

	binary.LittleEndian.PutUint64(payload[off:], xxh3.Hash(payload[:off]))

	out := make([]byte, lengthN+len(payload))
	copy(out, lengthBuf[:lengthN])
	copy(out[lengthN:], payload)
	return out, nil
}

// DecodeRecord decodes a record from data, returning the record and the
// number of bytes consumed. Any framing, checksum, or decompression failure
// leaves the input position undefined; callers treat it as the end of valid
// data or as corruption depending on where it happens.
func DecodeRecord(data []byte) (Record, int, error) {
	var rec Record
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return rec, 0, ErrInvalidRecord
	}
	if uint64(len(data)-n) < length {
		return rec, 0, ErrInvalidRecord
	}
	payload := data[n : n+int(length)]
	if len(payload) < 2+2+checksumSize {
		return rec, 0, ErrInvalidRecord
	}

	rec.Type = RecordType(payload[0])
	if rec.Type != RecordSet && rec.Type != RecordRemove {
		return rec, 0, ErrInvalidRecord
	}
	rec.Codec = compression.Type(payload[1])
	off := 2
	keyLen, read := binary.Uvarint(payload[off:])
	if read <= 0 {
		return rec, 0, ErrInvalidRecord
	}
	off += read
	valueLen, read := binary.Uvarint(payload[off:])
	if read <= 0 {
		return rec, 0, ErrInvalidRecord
	}
	off += read

	remaining := len(payload) - off - checksumSize
	if remaining < 0 || keyLen > uint64(remaining) || valueLen > uint64(remaining)-keyLen {
		return rec, 0, ErrInvalidRecord
	}
	rec.Key = append([]byte(nil), payload[off:off+int(keyLen)]...)
	off += int(keyLen)
	stored := payload[off : off+int(valueLen)]
	off += int(valueLen)

	if binary.LittleEndian.Uint64(payload[off:off+checksumSize]) != xxh3.Hash(payload[:off]) {
		return rec, 0, ErrChecksumMismatch
	}

	value, err := compression.Decompress(rec.Codec, stored)
	if err != nil {
		return rec, 0, ErrInvalidRecord
	}
	rec.Value = append([]byte(nil), value...)

	return rec, n + int(length), nil
}

func uvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
