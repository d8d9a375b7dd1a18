package codec

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// MaxMetadataStringBytes is the transaction-metadata limit on a single
// string value. Longer strings travel as ordered chunk arrays.
const MaxMetadataStringBytes = 64

// ChunkUTF8 splits s into chunks of at most max bytes, only ever splitting on
// UTF-8 rune boundaries. A string already within the limit comes back as a
// single chunk; the empty string as a single empty chunk.
func ChunkUTF8(s string, max int) []string {
	if max <= 0 {
		max = MaxMetadataStringBytes
	}
	if len(s) <= max {
		return []string{s}
	}
	var out []string
	for len(s) > 0 {
		n := max
		if n > len(s) {
			n = len(s)
		}
		// Back off to the previous rune boundary.
		for n > 0 && n < len(s) && !utf8.RuneStart(s[n]) {
			n--
		}
		if n == 0 {
			// A single rune wider than max cannot happen for max >= 4.
			n = 1
		}
		out = append(out, s[:n])
		s = s[n:]
	}
	return out
}

// RejoinChunks reverses ChunkUTF8 for strings that were actually chunked.
//
// The heuristic: a sequence is treated as chunks of one long string only when
// at least one element's byte length equals exactly MaxMetadataStringBytes;
// it reports joined=false otherwise, leaving the caller a genuine array of
// short strings. A short-string array that happens to contain a 64-byte
// element is indistinguishable from a chunked string; that ambiguity is
// inherent to the wire format and is not resolved here.
func RejoinChunks(chunks []string) (s string, joined bool) {
	if len(chunks) == 0 {
		return "", false
	}
	if len(chunks) == 1 {
		return chunks[0], true
	}
	for _, c := range chunks {
		if len(c) == MaxMetadataStringBytes {
			return strings.Join(chunks, ""), true
		}
	}
	return "", false
}

// IsHex reports whether s is a non-empty, even-length hex string.
func IsHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// FromHex decodes a hex string, accepting either case.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return nil, &Error{Kind: KindDecode, RuleID: "CODEC-HEX-001", Message: "invalid hex string", Cause: err}
	}
	return b, nil
}

// ToHex encodes bytes as lowercase hex.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}
