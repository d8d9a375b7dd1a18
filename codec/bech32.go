// Package codec implements the identifier and metadata encodings shared by
// every other package: bech32 (stake addresses, DRep ids, pool ids, committee
// cold credentials), lowercase hex, and 64-byte UTF-8 metadata chunking.
//
// Historically each call site carried its own bech32 copy; this package is the
// single choke point for all of them.
package codec

import "strings"

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// bech32MinLen is the shortest well-formed bech32 string: a one-character
// human-readable part, the separator, and nothing but the checksum.
const bech32MinLen = 7

var bech32CharsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range bech32Charset {
		rev[c] = int8(i)
	}
	return rev
}()

func bech32Polymod(values []byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := uint32(1)
	for _, v := range values {
		b := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

func bech32HRPExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func bech32CreateChecksum(hrp string, data []byte) []byte {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	polymod := bech32Polymod(values) ^ 1
	out := make([]byte, 6)
	for i := 0; i < 6; i++ {
		out[i] = byte(polymod >> uint(5*(5-i)) & 31)
	}
	return out
}

func bech32VerifyChecksum(hrp string, data []byte) bool {
	return bech32Polymod(append(bech32HRPExpand(hrp), data...)) == 1
}

// EncodeBech32 encodes 8-bit data under the given human-readable part.
func EncodeBech32(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", newError(KindEncode, "CODEC-B32-101", "empty human-readable part")
	}
	grouped, err := ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(strings.ToLower(hrp))
	sb.WriteByte('1')
	for _, v := range append(grouped, bech32CreateChecksum(strings.ToLower(hrp), grouped)...) {
		sb.WriteByte(bech32Charset[v])
	}
	return sb.String(), nil
}

// DecodeBech32 decodes a bech32 string into its human-readable part and
// 8-bit payload. The checksum is verified; invalid charset characters, mixed
// case, a bad checksum, or fewer than 7 symbols fail with a Decode error.
func DecodeBech32(s string) (string, []byte, error) {
	if len(s) < bech32MinLen {
		return "", nil, newError(KindDecode, "CODEC-B32-001", "bech32 string too short")
	}
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, newError(KindDecode, "CODEC-B32-002", "bech32 string mixes upper and lower case")
	}
	s = strings.ToLower(s)
	sep := strings.LastIndexByte(s, '1')
	if sep < 1 || sep+7 > len(s) {
		return "", nil, newError(KindDecode, "CODEC-B32-003", "missing or misplaced bech32 separator")
	}
	hrp := s[:sep]
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", nil, newError(KindDecode, "CODEC-B32-004", "invalid character in human-readable part")
		}
	}
	data := make([]byte, 0, len(s)-sep-1)
	for i := sep + 1; i < len(s); i++ {
		c := s[i]
		if c >= 128 || bech32CharsetRev[c] == -1 {
			return "", nil, newError(KindDecode, "CODEC-B32-005", "invalid bech32 charset character")
		}
		data = append(data, byte(bech32CharsetRev[c]))
	}
	if !bech32VerifyChecksum(hrp, data) {
		return "", nil, newError(KindDecode, "CODEC-B32-006", "bech32 checksum mismatch")
	}
	payload, err := ConvertBits(data[:len(data)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, payload, nil
}

// ConvertBits regroups data between bit widths, as used by bech32 payloads.
// With pad=false, leftover bits must be zero and fewer than fromBits wide.
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, newError(KindDecode, "CODEC-B32-011", "invalid bit group size")
	}
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, newError(KindDecode, "CODEC-B32-012", "invalid data value for bit group size")
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, newError(KindDecode, "CODEC-B32-013", "invalid padding in bit groups")
	}
	return out, nil
}
