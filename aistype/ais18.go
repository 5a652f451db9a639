package aistype

import "github.com/go-ais/aivdm/bitcodec"

// One field here is known by two names across historic specifications: it
// is "assigned_mode" semantically (also called "mode_flag" for type 18 in
// some predecessors). This package preserves "assigned_mode" canonically
// on both encode and decode.
var ais18Fields = bitcodec.Compile(
	bitcodec.Uint("id", 6, 18),
	bitcodec.Uint("repeat_indicator", 2, 0),
	bitcodec.Uint("mmsi", 30, 0),
	bitcodec.Uint("spare", 8, 0),
	bitcodec.Uint10("sog", 10, 102.3),
	bitcodec.Uint("position_accuracy", 1, 0),
	bitcodec.LatLon("x", 28, 181),
	bitcodec.LatLon("y", 27, 91),
	bitcodec.Uint10("cog", 12, 360),
	bitcodec.Uint("true_heading", 9, 511),
	bitcodec.Uint("timestamp", 6, 60),
	bitcodec.Uint("spare2", 2, 0),
	bitcodec.Uint("unit_flag", 1, 0),
	bitcodec.Uint("display_flag", 1, 0),
	bitcodec.Uint("dsc_flag", 1, 0),
	bitcodec.Uint("band_flag", 1, 0),
	bitcodec.Uint("m22_flag", 1, 0),
	bitcodec.Bool("assigned_mode", false),
	bitcodec.Bool("raim", false),
	bitcodec.Uint("commstate_flag", 1, 0),
)

func decodeType18(buf *bitcodec.BitBuffer) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := ais18Fields.Unpack(buf, msg); err != nil {
		return nil, err
	}
	if err := decodeCommstate(buf, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func encodeType18(message map[string]interface{}) (string, int, error) {
	buf := bufferFor(ais18Fields, commstateBits(message))
	if err := ais18Fields.Pack(buf, message); err != nil {
		return "", 0, err
	}
	if err := encodeCommstate(buf, message); err != nil {
		return "", 0, err
	}
	body, pad := buf.ToNMEA()
	return body, pad, nil
}
