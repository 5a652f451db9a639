package aistype

import "github.com/go-ais/aivdm/bitcodec"

var ais8Fields = bitcodec.Compile(
	bitcodec.Uint("id", 6, 8),
	bitcodec.Uint("repeat_indicator", 2, 0),
	bitcodec.Uint("mmsi", 30, 0),
	bitcodec.Uint("spare", 2, 0),
	bitcodec.Hex("application_id", 16, "0000"),
	bitcodec.VarHex("application_data"),
)

func decodeType8(buf *bitcodec.BitBuffer) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := ais8Fields.Unpack(buf, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func encodeType8(message map[string]interface{}) (string, int, error) {
	buf := bufferFor(ais8Fields, variableLen(ais8Fields, message))
	if err := ais8Fields.Pack(buf, message); err != nil {
		return "", 0, err
	}
	body, pad := buf.ToNMEA()
	return body, pad, nil
}
