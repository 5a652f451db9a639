package aistype

import (
	"fmt"

	"github.com/go-ais/aivdm/bitcodec"
)

var ais24Prefix = bitcodec.Compile(
	bitcodec.Uint("id", 6, 24),
	bitcodec.Uint("repeat_indicator", 2, 0),
	bitcodec.Uint("mmsi", 30, 0),
	bitcodec.Uint("part_num", 2, 0),
)

var ais24PartA = bitcodec.Compile(
	bitcodec.ASCII6("name_1", 60, "@@@@@@@@@@"),
	bitcodec.ASCII6("name_2", 60, "@@@@@@@@@@"),
)

var ais24PartB = bitcodec.Compile(
	bitcodec.Uint("type_and_cargo", 8, 0),
	bitcodec.ASCII6("vendor_id", 42, "@@@@@@@"),
	bitcodec.ASCII6("callsign", 42, "@@@@@@@"),
	bitcodec.Uint("dim_a", 9, 0),
	bitcodec.Uint("dim_b", 9, 0),
	bitcodec.Uint("dim_c", 6, 0),
	bitcodec.Uint("dim_d", 6, 0),
	bitcodec.Uint("fix_type", 4, 0),
	bitcodec.Uint("spare", 2, 0),
)

// vendorOverlay decodes/encodes the first 18 bits of the vendor_id region
// (ITU-R M.1371-4) by overlaying the same absolute bit range [48, 90) that
// vendor_id itself occupies.
var vendorOverlay = bitcodec.Compile(
	bitcodec.ASCII6("vendor_id_1371_4", 18, "@@@"),
	bitcodec.Uint("vendor_model", 4, 0),
	bitcodec.Uint("vendor_serial", 20, 0),
)

const vendorOverlayOffset = 48

// mothershipOverlay overlays the dimension block [132, 168) for auxiliary
// craft (mmsi // 10_000_000 == 98).
var mothershipOverlay = bitcodec.Compile(
	bitcodec.Uint("mothership_mmsi", 30, 0),
	bitcodec.Uint("spare3", 6, 0),
)

const mothershipOverlayOffset = 132

func decodeType24(buf *bitcodec.BitBuffer) (map[string]interface{}, error) {
	msg := map[string]interface{}{}
	if err := ais24Prefix.Unpack(buf, msg); err != nil {
		return nil, err
	}

	partNum := asInt(msg["part_num"])
	switch partNum {
	case 0:
		name := map[string]interface{}{}
		if err := ais24PartA.Unpack(buf, name); err != nil {
			return nil, err
		}
		msg["name"] = name["name_1"].(string) + name["name_2"].(string)
	case 1:
		if err := ais24PartB.Unpack(buf, msg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("AIS24: %w %d", ErrUnknownPartNumber, partNum)
	}

	// the vendor/mothership overlays only apply to part B's vendor_id and
	// dimension regions; part A carries vessel name text at those offsets.
	if partNum == 1 {
		if _, err := vendorOverlay.UnpackFrom(buf, vendorOverlayOffset, msg); err != nil {
			return nil, err
		}

		mmsi := asInt(msg["mmsi"])
		if mmsi/10_000_000 == 98 {
			if _, err := mothershipOverlay.UnpackFrom(buf, mothershipOverlayOffset, msg); err != nil {
				return nil, err
			}
		}
	}

	return msg, nil
}

func encodeType24(message map[string]interface{}) (string, int, error) {
	partNum := asInt(message["part_num"])

	var nbits int
	switch partNum {
	case 0:
		nbits = ais24Prefix.TotalBits() + ais24PartA.TotalBits()
	case 1:
		nbits = ais24Prefix.TotalBits() + ais24PartB.TotalBits()
	default:
		return "", 0, fmt.Errorf("AIS24: %w %d", ErrUnknownPartNumber, partNum)
	}

	buf := bitcodec.New(nbits)
	if err := ais24Prefix.Pack(buf, message); err != nil {
		return "", 0, err
	}

	switch partNum {
	case 0:
		name, _ := message["name"].(string)
		name1, name2 := splitName20(name)
		packed := map[string]interface{}{"name_1": name1, "name_2": name2}
		if err := ais24PartA.Pack(buf, packed); err != nil {
			return "", 0, err
		}
	case 1:
		if err := ais24PartB.Pack(buf, message); err != nil {
			return "", 0, err
		}
	}

	if _, ok := message["vendor_id_1371_4"]; ok {
		if _, err := vendorOverlay.PackInto(buf, vendorOverlayOffset, message); err != nil {
			return "", 0, err
		}
	}
	if _, ok := message["mothership_mmsi"]; ok {
		if _, err := mothershipOverlay.PackInto(buf, mothershipOverlayOffset, message); err != nil {
			return "", 0, err
		}
	}

	body, pad := buf.ToNMEA()
	return body, pad, nil
}
