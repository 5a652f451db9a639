package aistype

import "github.com/go-ais/aivdm/bitcodec"

// Types 1, 2 and 3 share one 168-bit "common navigation block" layout; only
// the comm-state variant differs (type 3 reports via ITDMA, types 1 and 2
// via SOTDMA), matching historical AIS decoder conventions. This is
// implemented natively rather than punted to a fallback decoder because it
// is a single fixed, well-documented struct.
var navHeader = bitcodec.Compile(
	bitcodec.Uint("id", 6, 0),
	bitcodec.Uint("repeat_indicator", 2, 0),
	bitcodec.Uint("mmsi", 30, 0),
	bitcodec.Uint("nav_status", 4, 15),
	bitcodec.Int("rot", 8, -128),
	bitcodec.Uint10("sog", 10, 102.3),
	bitcodec.Uint("position_accuracy", 1, 0),
	bitcodec.LatLon("x", 28, 181),
	bitcodec.LatLon("y", 27, 91),
	bitcodec.Uint10("cog", 12, 360),
	bitcodec.Uint("true_heading", 9, 511),
	bitcodec.Uint("timestamp", 6, 60),
	bitcodec.Uint("special_manoeuvre", 2, 0),
	bitcodec.Uint("spare", 3, 0),
	bitcodec.Bool("raim", false),
)

func decodeType123(buf *bitcodec.BitBuffer, id int) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := navHeader.Unpack(buf, msg); err != nil {
		return nil, err
	}
	if id == 3 {
		if err := commstateITDMA.Unpack(buf, msg); err != nil {
			return nil, err
		}
		return msg, nil
	}
	if err := commstateSOTDMA.Unpack(buf, msg); err != nil {
		return nil, err
	}
	timeoutDef, err := sotdmaTimeoutSchema(msg)
	if err != nil {
		return nil, err
	}
	if err := timeoutDef.Unpack(buf, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func encodeType123(message map[string]interface{}) (string, int, error) {
	id, _ := idOf(message)
	radioBits := commstateITDMA.TotalBits()
	if id != 3 {
		timeoutDef, err := sotdmaTimeoutSchema(message)
		if err != nil {
			return "", 0, err
		}
		radioBits = commstateSOTDMA.TotalBits() + timeoutDef.TotalBits()
	}
	buf := bufferFor(navHeader, radioBits)
	if err := navHeader.Pack(buf, message); err != nil {
		return "", 0, err
	}
	if id == 3 {
		if err := commstateITDMA.Pack(buf, message); err != nil {
			return "", 0, err
		}
	} else {
		if err := commstateSOTDMA.Pack(buf, message); err != nil {
			return "", 0, err
		}
		timeoutDef, err := sotdmaTimeoutSchema(message)
		if err != nil {
			return "", 0, err
		}
		if err := timeoutDef.Pack(buf, message); err != nil {
			return "", 0, err
		}
	}
	body, pad := buf.ToNMEA()
	return body, pad, nil
}
