package aistype

import "github.com/go-ais/aivdm/bitcodec"

var ais25Header = bitcodec.Compile(
	bitcodec.Uint("id", 6, 25),
	bitcodec.Uint("repeat_indicator", 2, 0),
	bitcodec.Uint("mmsi", 30, 0),
	bitcodec.Uint("addressed", 1, 0),
	bitcodec.Uint("use_app_id", 1, 0),
)

var ais25Destination = bitcodec.Compile(
	bitcodec.Uint("dest_mmsi", 30, 0),
	bitcodec.Uint("spare", 2, 0),
)

var ais25DacFi = bitcodec.Compile(
	bitcodec.Uint("dac", 10, 1),
	bitcodec.Uint("fi", 6, 0),
	bitcodec.Uint("text_seq", 11, 0),
)

var ais25Text = bitcodec.Compile(bitcodec.VarASCII6("text"))

func decodeType25(buf *bitcodec.BitBuffer) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := ais25Header.Unpack(buf, msg); err != nil {
		return nil, err
	}
	if truthy(msg["addressed"]) {
		if err := ais25Destination.Unpack(buf, msg); err != nil {
			return nil, err
		}
	}
	if err := ais25DacFi.Unpack(buf, msg); err != nil {
		return nil, err
	}
	if err := ais25Text.Unpack(buf, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func encodeType25(message map[string]interface{}) (string, int, error) {
	nbits := ais25Header.TotalBits() + ais25DacFi.TotalBits() + variableLen(ais25Text, message)
	if truthy(message["addressed"]) {
		nbits += ais25Destination.TotalBits()
	}

	buf := bitcodec.New(nbits)
	if err := ais25Header.Pack(buf, message); err != nil {
		return "", 0, err
	}
	if truthy(message["addressed"]) {
		if err := ais25Destination.Pack(buf, message); err != nil {
			return "", 0, err
		}
	}
	if err := ais25DacFi.Pack(buf, message); err != nil {
		return "", 0, err
	}
	if err := ais25Text.Pack(buf, message); err != nil {
		return "", 0, err
	}
	body, pad := buf.ToNMEA()
	return body, pad, nil
}
