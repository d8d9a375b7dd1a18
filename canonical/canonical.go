// Package canonical derives content hashes from survey data.
//
// Serialization is deterministic CBOR: lexicographically sorted map keys,
// minimal-length integer encoding, and no floating point (fractional numbers
// are carried as decimal strings). Two encoders fed the same logical content
// must produce bit-identical bytes, so the blake2b-256 digest of those bytes
// is a portable identity.
package canonical

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"pollmark.io/pollmark/survey"
)

// HashSize is the digest length of the survey content hash.
const HashSize = 32

var encMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode serializes v to deterministic CBOR.
func Encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// HashBytes returns the blake2b-256 digest of b.
func HashBytes(b []byte) [HashSize]byte {
	return blake2b.Sum256(b)
}

// Blake2b224 returns the blake2b-224 digest used for Cardano credential
// hashes (key hashes are 28 bytes).
func Blake2b224(b []byte) [28]byte {
	h, err := blake2b.New(28, nil)
	if err != nil {
		panic(err)
	}
	h.Write(b)
	var out [28]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HashSurveyDetails computes the content hash identifying a survey
// definition. Every field of the details participates; the source object's
// field insertion order is irrelevant because the canonical map form sorts
// keys.
func HashSurveyDetails(d *survey.Details) ([HashSize]byte, error) {
	if d == nil {
		return [HashSize]byte{}, fmt.Errorf("canonical: nil details")
	}
	enc, err := Encode(detailsCanonicalMap(d))
	if err != nil {
		return [HashSize]byte{}, fmt.Errorf("canonical: %w", err)
	}
	return HashBytes(enc), nil
}

// SurveyHashHex returns the lowercase hex content hash of d.
func SurveyHashHex(d *survey.Details) (string, error) {
	h, err := HashSurveyDetails(d)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h[:]), nil
}

// VerifySurveyHash recomputes the content hash of d and compares it to
// expectedHex, case-insensitively.
func VerifySurveyHash(d *survey.Details, expectedHex string) (bool, error) {
	got, err := SurveyHashHex(d)
	if err != nil {
		return false, err
	}
	return got == strings.ToLower(expectedHex), nil
}

// detailsCanonicalMap lists every Details field explicitly. Optional fields
// that are absent are encoded as explicit nulls rather than omitted, so
// adding or removing any field always moves the hash.
func detailsCanonicalMap(d *survey.Details) map[string]any {
	questions := make([]any, len(d.Questions))
	for i := range d.Questions {
		questions[i] = questionCanonicalMap(&d.Questions[i])
	}

	var eligibility any
	if d.Eligibility != nil {
		roles := make([]string, len(d.Eligibility))
		for i, r := range d.Eligibility {
			roles[i] = string(r)
		}
		eligibility = roles
	}

	var lifecycle any
	if d.Lifecycle != nil {
		lifecycle = map[string]any{
			"unit":  d.Lifecycle.Unit,
			"start": d.Lifecycle.Start,
			"end":   d.Lifecycle.End,
		}
	}

	var refAction any
	if d.ReferenceAction != nil {
		refAction = map[string]any{
			"txId":  strings.ToLower(d.ReferenceAction.TxID),
			"index": d.ReferenceAction.Index,
		}
	}

	var weighting any
	if d.VoteWeighting != "" {
		weighting = string(d.VoteWeighting)
	}

	return map[string]any{
		"specVersion":     d.SpecVersion,
		"title":           d.Title,
		"description":     d.Description,
		"questions":       questions,
		"eligibility":     eligibility,
		"voteWeighting":   weighting,
		"lifecycle":       lifecycle,
		"referenceAction": refAction,
	}
}

func questionCanonicalMap(q *survey.Question) map[string]any {
	var options any
	if q.Options != nil {
		options = q.Options
	}
	var numeric any
	if q.Numeric != nil {
		var step any
		if q.Numeric.Step != nil {
			step = CanonicalNumber(*q.Numeric.Step)
		}
		numeric = map[string]any{
			"minValue": CanonicalNumber(q.Numeric.MinValue),
			"maxValue": CanonicalNumber(q.Numeric.MaxValue),
			"step":     step,
		}
	}
	var custom any
	if q.Custom != nil {
		custom = map[string]any{
			"schemaUri":     q.Custom.SchemaURI,
			"hashAlgorithm": q.Custom.HashAlgorithm,
			"schemaHash":    strings.ToLower(q.Custom.SchemaHash),
		}
	}
	return map[string]any{
		"questionId":         q.ID,
		"question":           q.Question,
		"methodType":         string(q.MethodType),
		"options":            options,
		"maxSelections":      int64(q.MaxSelections),
		"numericConstraints": numeric,
		"customMethod":       custom,
	}
}

// CanonicalNumber maps a float to a CBOR-safe value: an int64 when the value
// is integral, otherwise the shortest decimal string that round-trips.
// Floating point never reaches the encoder.
func CanonicalNumber(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
