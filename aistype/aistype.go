// Package aistype implements the AIS message-type dispatch layer: decoding
// and encoding of the payload types whose fixed or semi-fixed field layouts
// are defined outright (1, 2, 3, 8, 9, 18, 19, 24, 25), plus a fallback hook
// for types the table does not claim.
package aistype

import (
	"errors"
	"fmt"

	"github.com/go-ais/aivdm/bitcodec"
)

// ErrUnknownType indicates a message id with no native decoder/encoder and
// no fallback able to claim it.
var ErrUnknownType = errors.New("aistype: unknown message type")

// ErrUnknownPartNumber indicates an AIS24 part_num outside {0, 1}.
var ErrUnknownPartNumber = errors.New("unknown part number")

// ErrUnknownSlotTimeout indicates a comm-state slot_timeout outside {0..7}.
var ErrUnknownSlotTimeout = errors.New("unknown slot_timeout value")

// FallbackDecoder is an externally supplied decoder consulted when the
// primary dispatch table does not claim a message (e.g. type 5). The core
// never embeds a concrete implementation of this interface.
type FallbackDecoder interface {
	DecodePayload(body string, pad int) (map[string]interface{}, error)
	CanDecode(body string, pad int) bool
}

var idHeaderDef = bitcodec.Compile(bitcodec.Uint("id", 6, 0))

var nativeTypes = map[int]bool{1: true, 2: true, 3: true, 8: true, 9: true, 18: true, 19: true, 24: true, 25: true}

func peekID(buf *bitcodec.BitBuffer) (int, error) {
	msg := map[string]interface{}{}
	if _, err := idHeaderDef.UnpackFrom(buf, 0, msg); err != nil {
		return 0, err
	}
	return int(msg["id"].(uint64)), nil
}

// CanDecode reports whether the native table claims this message's type,
// without consulting any fallback.
func CanDecode(body string, pad int) bool {
	buf, err := bitcodec.FromNMEA(body, pad)
	if err != nil {
		return false
	}
	id, err := peekID(buf)
	if err != nil {
		return false
	}
	return nativeTypes[id]
}

// CanEncode reports whether the native table claims this message's id.
func CanEncode(message map[string]interface{}) bool {
	id, ok := idOf(message)
	if !ok {
		return false
	}
	return nativeTypes[id]
}

// Decode decodes an armored body per its leading 6-bit message id. When the
// native table does not claim the id and fallback is non-nil and able to
// decode it, the fallback's result is returned instead.
func Decode(body string, pad int, fallback FallbackDecoder) (map[string]interface{}, error) {
	buf, err := bitcodec.FromNMEA(body, pad)
	if err != nil {
		return nil, err
	}
	id, err := peekID(buf)
	if err != nil {
		return nil, err
	}

	switch id {
	case 1, 2, 3:
		return decodeType123(buf, id)
	case 8:
		return decodeType8(buf)
	case 9:
		return decodeType9(buf)
	case 18:
		return decodeType18(buf)
	case 19:
		return decodeType19(buf)
	case 24:
		return decodeType24(buf)
	case 25:
		return decodeType25(buf)
	}

	if fallback != nil && fallback.CanDecode(body, pad) {
		return fallback.DecodePayload(body, pad)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownType, id)
}

// Encode routes a message to its type's encoder by its "id" field.
func Encode(message map[string]interface{}) (string, int, error) {
	id, ok := idOf(message)
	if !ok {
		return "", 0, fmt.Errorf("%w: message has no usable id field", ErrUnknownType)
	}

	switch id {
	case 1, 2, 3:
		return encodeType123(message)
	case 8:
		return encodeType8(message)
	case 9:
		return encodeType9(message)
	case 18:
		return encodeType18(message)
	case 19:
		return encodeType19(message)
	case 24:
		return encodeType24(message)
	case 25:
		return encodeType25(message)
	}
	return "", 0, fmt.Errorf("%w: %d", ErrUnknownType, id)
}

func idOf(message map[string]interface{}) (int, bool) {
	switch v := message["id"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// bufferFor allocates an encode-time buffer sized for def's fixed fields
// plus each of the extra widths given (e.g. a variable-length field's width
// from variableLen, or a comm-state block from commstateBits).
func bufferFor(def *bitcodec.StructDef, extra ...int) *bitcodec.BitBuffer {
	n := def.TotalBits()
	for _, e := range extra {
		n += e
	}
	return bitcodec.New(n)
}

func variableLen(def *bitcodec.StructDef, msg map[string]interface{}) int {
	if !def.HasVariableField() {
		return 0
	}
	last := def.Fields[len(def.Fields)-1]
	return last.EncodedLen(msg[last.Name])
}
