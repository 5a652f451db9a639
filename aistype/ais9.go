package aistype

import "github.com/go-ais/aivdm/bitcodec"

var ais9Fields = bitcodec.Compile(
	bitcodec.Uint("id", 6, 9),
	bitcodec.Uint("repeat_indicator", 2, 0),
	bitcodec.Uint("mmsi", 30, 0),
	bitcodec.Uint("alt", 12, 4095),
	bitcodec.Uint("sog", 10, 1023),
	bitcodec.Uint("position_accuracy", 1, 0),
	bitcodec.LatLon("x", 28, 181),
	bitcodec.LatLon("y", 27, 91),
	bitcodec.Uint10("cog", 12, 360),
	bitcodec.Uint("timestamp", 6, 60),
	bitcodec.Uint("alt_sensor", 1, 0),
	bitcodec.Uint("spare", 7, 0),
	bitcodec.Uint("dte", 1, 0),
	bitcodec.Uint("spare2", 3, 0),
	bitcodec.Bool("assigned_mode", false),
	bitcodec.Bool("raim", false),
	bitcodec.Uint("commstate_flag", 1, 0),
)

func decodeType9(buf *bitcodec.BitBuffer) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := ais9Fields.Unpack(buf, msg); err != nil {
		return nil, err
	}
	if err := decodeCommstate(buf, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func encodeType9(message map[string]interface{}) (string, int, error) {
	buf := bufferFor(ais9Fields, commstateBits(message))
	if err := ais9Fields.Pack(buf, message); err != nil {
		return "", 0, err
	}
	if err := encodeCommstate(buf, message); err != nil {
		return "", 0, err
	}
	body, pad := buf.ToNMEA()
	return body, pad, nil
}
