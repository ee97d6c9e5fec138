package bitlog

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Wire protocol: each message is a msgpack-encoded struct prefixed with a
// big-endian uint32 length. One request yields exactly one response, and a
// connection carries any number of request/response pairs.

// Op identifies a request operation.
type Op uint8

const (
	OpGet Op = iota + 1
	OpSet
	OpRemove
)

// Request is one client command.
type Request struct {
	Op    Op     `msgpack:"op"`
	Key   string `msgpack:"key"`
	Value string `msgpack:"value,omitempty"`
}

// Status classifies a response.
type Status uint8

const (
	StatusOK Status = iota + 1
	StatusNotFound
	StatusError
)

// Response is the server's answer to one request.
type Response struct {
	Status Status `msgpack:"status"`
	Value  string `msgpack:"value,omitempty"`
	Error  string `msgpack:"error,omitempty"`
}

// MaxMessageSize bounds a single wire message. Values cap at 10 MiB, so
// anything larger is a framing error.
const MaxMessageSize = 16 * 1024 * 1024

func writeMessage(w io.Writer, msg interface{}) error {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return err
	}
	if len(payload) > MaxMessageSize {
		return fmt.Errorf("bitlog: message too large: %d bytes", len(payload))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func readMessage(r io.Reader, msg interface{}) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxMessageSize {
		return fmt.Errorf("bitlog: message too large: %d bytes", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}
	return msgpack.Unmarshal(payload, msg)
}
