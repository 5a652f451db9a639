package aistype

import "github.com/go-ais/aivdm/bitcodec"

var ais19Fields = bitcodec.Compile(
	bitcodec.Uint("id", 6, 19),
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
	bitcodec.Uint("spare2", 4, 0),
	bitcodec.ASCII6("name_1", 60, "@@@@@@@@@@"),
	bitcodec.ASCII6("name_2", 60, "@@@@@@@@@@"),
	bitcodec.Uint("type_and_cargo", 8, 0),
	bitcodec.Uint("dim_a", 9, 0),
	bitcodec.Uint("dim_b", 9, 0),
	bitcodec.Uint("dim_c", 6, 0),
	bitcodec.Uint("dim_d", 6, 0),
	bitcodec.Uint("fix_type", 4, 0),
	bitcodec.Bool("raim", false),
	bitcodec.Uint("dte", 1, 0),
	bitcodec.Bool("assigned_mode", false),
	bitcodec.Uint("spare3", 4, 0),
)

func decodeType19(buf *bitcodec.BitBuffer) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := ais19Fields.Unpack(buf, msg); err != nil {
		return nil, err
	}
	msg["name"] = msg["name_1"].(string) + msg["name_2"].(string)
	delete(msg, "name_1")
	delete(msg, "name_2")
	return msg, nil
}

func encodeType19(message map[string]interface{}) (string, int, error) {
	name, _ := message["name"].(string)
	name1, name2 := splitName20(name)

	packed := cloneWithout(message, "name")
	packed["name_1"] = name1
	packed["name_2"] = name2

	buf := bufferFor(ais19Fields)
	if err := ais19Fields.Pack(buf, packed); err != nil {
		return "", 0, err
	}
	body, pad := buf.ToNMEA()
	return body, pad, nil
}

// splitName20 splits a 20-character vessel name into its two 10-character
// ASCII6 halves, the way the 20-char name field is wired across two
// adjoining 60-bit fields.
func splitName20(name string) (string, string) {
	if len(name) <= 10 {
		return name, ""
	}
	return name[:10], name[10:]
}

func cloneWithout(msg map[string]interface{}, keys ...string) map[string]interface{} {
	skip := make(map[string]bool, len(keys))
	for _, k := range keys {
		skip[k] = true
	}
	out := make(map[string]interface{}, len(msg))
	for k, v := range msg {
		if !skip[k] {
			out[k] = v
		}
	}
	return out
}
