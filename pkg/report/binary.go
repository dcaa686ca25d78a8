package report

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

const (
	// BinaryMagic marks lifecycle report envelopes.
	BinaryMagic = "MLR1"
	// binaryHeaderSize is magic bytes + payload length bytes.
	binaryHeaderSize = 8
	magicSize        = 4
)

var (
	// ErrInvalidBinaryEnvelope indicates malformed or truncated binary payload.
	ErrInvalidBinaryEnvelope = errors.New("invalid binary envelope")
	// ErrBinaryPayloadTooLarge indicates payload exceeds binary envelope limit.
	ErrBinaryPayloadTooLarge = errors.New("binary payload too large")
)

// EncodeBinary writes rep as a length-prefixed JSON envelope.
func EncodeBinary(rep *lifecycle.Report, writer io.Writer) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal binary payload: %w", err)
	}

	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrBinaryPayloadTooLarge, len(payload))
	}

	header := make([]byte, binaryHeaderSize)
	copy(header[:magicSize], BinaryMagic)
	binary.LittleEndian.PutUint32(header[magicSize:], uint32(len(payload)))

	_, err = writer.Write(append(header, payload...))
	if err != nil {
		return fmt.Errorf("write binary envelope: %w", err)
	}

	return nil
}

// DecodeBinary reads one envelope written by [EncodeBinary].
func DecodeBinary(reader io.Reader) (*lifecycle.Report, error) {
	header := make([]byte, binaryHeaderSize)

	_, err := io.ReadFull(reader, header)
	if err != nil {
		return nil, errors.Join(ErrInvalidBinaryEnvelope, err)
	}

	if !bytes.Equal(header[:magicSize], []byte(BinaryMagic)) {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidBinaryEnvelope)
	}

	payload := make([]byte, binary.LittleEndian.Uint32(header[magicSize:]))

	_, err = io.ReadFull(reader, payload)
	if err != nil {
		return nil, errors.Join(ErrInvalidBinaryEnvelope, err)
	}

	var rep lifecycle.Report

	err = json.Unmarshal(payload, &rep)
	if err != nil {
		return nil, errors.Join(ErrInvalidBinaryEnvelope, err)
	}

	return &rep, nil
}
