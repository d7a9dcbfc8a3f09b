package part3

import "testing"

func TestGetPacketSizesRejectsInvalidGeometry(t *testing.T) {
	cases := []PacketSizeDef{
		{U: 3, B: 1, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 0, MCSIndex: 0, Z: 2048}, // bad u
		{U: 1, B: 3, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 0, MCSIndex: 0, Z: 2048}, // bad b
		{U: 1, B: 1, PacketLengthType: 0, PacketLength: 16, TMModeIndex: 0, MCSIndex: 0, Z: 2048}, // bad length type
		{U: 1, B: 1, PacketLengthType: 2, PacketLength: 17, TMModeIndex: 0, MCSIndex: 0, Z: 2048}, // length out of range
		{U: 1, B: 1, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 99, MCSIndex: 0, Z: 2048}, // bad tm mode
		{U: 1, B: 1, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 0, MCSIndex: 99, Z: 2048}, // bad mcs
		{U: 1, B: 1, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 0, MCSIndex: 0, Z: 3000},  // bad Z
	}
	for i, def := range cases {
		if _, ok := GetPacketSizes(def, 8); ok {
			t.Fatalf("case %d: expected rejection for %+v", i, def)
		}
	}
}

func TestGetPacketSizesRejectsOverprovisionedAntennaCount(t *testing.T) {
	def := PacketSizeDef{U: 1, B: 1, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 7, MCSIndex: 0, Z: 2048}
	if _, ok := GetPacketSizes(def, 2); ok {
		t.Fatalf("tm_mode_index 7 requires 4 antennas, device has 2: expected rejection")
	}
	if _, ok := GetPacketSizes(def, 4); !ok {
		t.Fatalf("tm_mode_index 7 with 4 antennas should be accepted")
	}
}

func TestGetPacketSizesIsSelfConsistent(t *testing.T) {
	def := PacketSizeDef{U: 1, B: 1, PacketLengthType: 2, PacketLength: 16, TMModeIndex: 0, MCSIndex: 0, Z: 2048}
	sizes, ok := GetPacketSizes(def, 1)
	if !ok {
		t.Fatalf("expected a valid geometry for %+v", def)
	}
	if sizes.NTBByte*8 != sizes.NTBBits {
		t.Fatalf("NTBByte*8 = %d != NTBBits = %d", sizes.NTBByte*8, sizes.NTBBits)
	}
	if sizes.Seg.F != 0 {
		t.Fatalf("accepted geometry must have zero filler bits, got F=%d", sizes.Seg.F)
	}
	if sizes.NSamplesPacket != sizes.NSamplesSTF+sizes.NSamplesDF+sizes.NSamplesGI {
		t.Fatalf("NSamplesPacket inconsistent with its STF/DF/GI components")
	}
}

func TestGetMaximumPacketSizesPicksLargest(t *testing.T) {
	best, ok := GetMaximumPacketSizes("1.1.1.A")
	if !ok {
		t.Fatalf("expected a valid maximum geometry for 1.1.1.A")
	}
	if best.NTBByte <= 0 {
		t.Fatalf("expected a positive NTBByte, got %d", best.NTBByte)
	}
}

func TestGetMaximumPacketSizesRejectsUnknownClass(t *testing.T) {
	if _, ok := GetMaximumPacketSizes("not-a-class"); ok {
		t.Fatalf("expected failure for malformed radio device class string")
	}
}
