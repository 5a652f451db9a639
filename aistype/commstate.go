package aistype

import (
	"fmt"

	"github.com/go-ais/aivdm/bitcodec"
)

var commstateCS = bitcodec.Compile(
	bitcodec.Bits("commstate", 19, "1100000000000000110"),
)

var commstateITDMA = bitcodec.Compile(
	bitcodec.Uint("sync_state", 2, 0),
	bitcodec.Uint("slot_increment", 13, 0),
	bitcodec.Uint("slots_to_allocate", 3, 0),
	bitcodec.Bool("keep_flag", false),
)

var commstateSOTDMA = bitcodec.Compile(
	bitcodec.Uint("sync_state", 2, 0),
	bitcodec.Uint("slot_timeout", 3, 0),
)

var sotdmaTimeout0 = bitcodec.Compile(bitcodec.Uint("slot_offset", 14, 0))
var sotdmaTimeout1 = bitcodec.Compile(
	bitcodec.Uint("utc_hour", 5, 0),
	bitcodec.Uint("utc_min", 7, 0),
	bitcodec.Uint("utc_spare", 2, 0),
)
var sotdmaTimeout246 = bitcodec.Compile(bitcodec.Uint("slot_number", 14, 0))
var sotdmaTimeout357 = bitcodec.Compile(bitcodec.Uint("received_stations", 14, 0))

// commstateVariant picks the 19-bit comm-state schema from the already
// decoded unit_flag/commstate_flag fields of msg, per the type 18/9 header.
func commstateVariant(msg map[string]interface{}) (string, *bitcodec.StructDef) {
	if truthy(msg["unit_flag"]) {
		return "CS", commstateCS
	}
	if truthy(msg["commstate_flag"]) {
		return "ITDMA", commstateITDMA
	}
	return "SOTDMA", commstateSOTDMA
}

func sotdmaTimeoutSchema(msg map[string]interface{}) (*bitcodec.StructDef, error) {
	timeout := asInt(msg["slot_timeout"])
	switch timeout {
	case 0:
		return sotdmaTimeout0, nil
	case 1:
		return sotdmaTimeout1, nil
	case 2, 4, 6:
		return sotdmaTimeout246, nil
	case 3, 5, 7:
		return sotdmaTimeout357, nil
	default:
		return nil, fmt.Errorf("AIS18: %w %d", ErrUnknownSlotTimeout, timeout)
	}
}

// decodeCommstate reads the 19-bit comm-state block (and, for SOTDMA, its
// further 14-bit timeout sub-schema) from buf's current cursor into msg.
func decodeCommstate(buf *bitcodec.BitBuffer, msg map[string]interface{}) error {
	variant, def := commstateVariant(msg)
	if err := def.Unpack(buf, msg); err != nil {
		return err
	}
	if variant != "SOTDMA" {
		return nil
	}
	timeoutDef, err := sotdmaTimeoutSchema(msg)
	if err != nil {
		return err
	}
	return timeoutDef.Unpack(buf, msg)
}

// encodeCommstate mirrors decodeCommstate at encode time.
func encodeCommstate(buf *bitcodec.BitBuffer, msg map[string]interface{}) error {
	variant, def := commstateVariant(msg)
	if err := def.Pack(buf, msg); err != nil {
		return err
	}
	if variant != "SOTDMA" {
		return nil
	}
	timeoutDef, err := sotdmaTimeoutSchema(msg)
	if err != nil {
		return err
	}
	return timeoutDef.Pack(buf, msg)
}

// commstateBits reports how many bits the comm-state block (including any
// SOTDMA timeout sub-schema) will occupy for msg, for buffer sizing.
func commstateBits(msg map[string]interface{}) int {
	_, def := commstateVariant(msg)
	n := def.TotalBits()
	if truthy(msg["unit_flag"]) || truthy(msg["commstate_flag"]) {
		return n
	}
	timeoutDef, err := sotdmaTimeoutSchema(msg)
	if err != nil {
		return n
	}
	return n + timeoutDef.TotalBits()
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case uint64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	}
	return false
}

func asInt(v interface{}) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint64:
		return int(x)
	case float64:
		return int(x)
	}
	return 0
}
