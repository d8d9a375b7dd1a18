package schema

import (
	"pollmark.io/pollmark/codec"
	"pollmark.io/pollmark/survey"
)

// AcceptedHashAlgorithm is the only hash algorithm accepted for custom
// method schema pins.
const AcceptedHashAlgorithm = "blake2b-256"

// ValidateDetails checks a survey definition against the per-method-type
// structural rules. It never mutates d.
func ValidateDetails(d *survey.Details) Result {
	var c collector
	if d == nil {
		c.addf("SCHEMA-DET-001", "survey details missing")
		return c.result()
	}
	if d.SpecVersion == "" {
		c.addf("SCHEMA-DET-002", "specVersion is required")
	}
	if d.Title == "" {
		c.addf("SCHEMA-DET-003", "title is required")
	}
	if len(d.Questions) == 0 {
		c.addf("SCHEMA-DET-010", "at least one question is required")
	}

	seen := make(map[string]bool)
	for i := range d.Questions {
		q := &d.Questions[i]
		if q.ID == "" {
			c.addf("SCHEMA-DET-011", "question %d: questionId is required", i)
		} else if seen[q.ID] {
			c.addf("SCHEMA-DET-012", "question %d: duplicate questionId %q", i, q.ID)
		}
		seen[q.ID] = true
		if q.Question == "" {
			c.addf("SCHEMA-DET-013", "question %q: question text is required", q.ID)
		}
		validateQuestionMethod(&c, q)
	}

	for _, r := range d.Eligibility {
		if !knownRole(r) {
			c.addf("SCHEMA-DET-040", "unknown eligibility role %q", r)
		}
	}
	switch d.VoteWeighting {
	case "", survey.WeightingStakeBased, survey.WeightingCredentialBased:
	default:
		c.addf("SCHEMA-DET-041", "unknown vote weighting %q", d.VoteWeighting)
	}
	if lc := d.Lifecycle; lc != nil {
		if lc.Unit != "epoch" && lc.Unit != "slot" {
			c.addf("SCHEMA-DET-042", "lifecycle unit must be epoch or slot, got %q", lc.Unit)
		}
		if lc.End < lc.Start {
			c.addf("SCHEMA-DET-043", "lifecycle end %d before start %d", lc.End, lc.Start)
		}
	}
	if ra := d.ReferenceAction; ra != nil {
		if len(ra.TxID) != 64 || !codec.IsHex(ra.TxID) {
			c.addf("SCHEMA-DET-044", "referenceAction txId must be 64 hex characters")
		}
	}
	return c.result()
}

func validateQuestionMethod(c *collector, q *survey.Question) {
	switch q.MethodType {
	case survey.MethodSingleChoice:
		if len(q.Options) < 2 {
			c.addf("SCHEMA-DET-020", "question %q: singleChoice requires at least 2 options", q.ID)
		}
		if q.Numeric != nil {
			c.addf("SCHEMA-DET-021", "question %q: singleChoice must not carry numeric constraints", q.ID)
		}
		if q.Custom != nil {
			c.addf("SCHEMA-DET-022", "question %q: singleChoice must not carry a custom method", q.ID)
		}
		if q.MaxSelections != 0 {
			c.addf("SCHEMA-DET-023", "question %q: singleChoice must not set maxSelections", q.ID)
		}
	case survey.MethodMultiSelect:
		if len(q.Options) < 2 {
			c.addf("SCHEMA-DET-024", "question %q: multiSelect requires at least 2 options", q.ID)
		}
		if q.MaxSelections < 1 {
			c.addf("SCHEMA-DET-025", "question %q: multiSelect requires maxSelections >= 1", q.ID)
		} else if len(q.Options) > 0 && q.MaxSelections > len(q.Options) {
			c.addf("SCHEMA-DET-026", "question %q: maxSelections %d exceeds option count %d", q.ID, q.MaxSelections, len(q.Options))
		}
		if q.Numeric != nil {
			c.addf("SCHEMA-DET-027", "question %q: multiSelect must not carry numeric constraints", q.ID)
		}
		if q.Custom != nil {
			c.addf("SCHEMA-DET-028", "question %q: multiSelect must not carry a custom method", q.ID)
		}
	case survey.MethodNumericRange:
		if q.Numeric == nil {
			c.addf("SCHEMA-DET-030", "question %q: numericRange requires numeric constraints", q.ID)
		} else {
			if q.Numeric.MinValue > q.Numeric.MaxValue {
				c.addf("SCHEMA-DET-031", "question %q: minValue %v exceeds maxValue %v", q.ID, q.Numeric.MinValue, q.Numeric.MaxValue)
			}
			// An omitted step means "any value in range"; a present step,
			// zero included, must be positive.
			if q.Numeric.Step != nil && *q.Numeric.Step <= 0 {
				c.addf("SCHEMA-DET-032", "question %q: step must be positive when set", q.ID)
			}
		}
		if len(q.Options) > 0 {
			c.addf("SCHEMA-DET-033", "question %q: numericRange must not carry options", q.ID)
		}
		if q.Custom != nil {
			c.addf("SCHEMA-DET-034", "question %q: numericRange must not carry a custom method", q.ID)
		}
	default:
		// Custom method URI.
		if q.MethodType == "" {
			c.addf("SCHEMA-DET-035", "question %q: methodType is required", q.ID)
			return
		}
		if q.Custom == nil {
			c.addf("SCHEMA-DET-036", "question %q: custom method %q requires schemaUri, hashAlgorithm and schemaHash", q.ID, q.MethodType)
			return
		}
		if q.Custom.SchemaURI == "" {
			c.addf("SCHEMA-DET-037", "question %q: custom method requires a schemaUri", q.ID)
		}
		if q.Custom.HashAlgorithm != AcceptedHashAlgorithm {
			c.addf("SCHEMA-DET-038", "question %q: hashAlgorithm must be %q, got %q", q.ID, AcceptedHashAlgorithm, q.Custom.HashAlgorithm)
		}
		if len(q.Custom.SchemaHash) != 64 || !codec.IsHex(q.Custom.SchemaHash) {
			c.addf("SCHEMA-DET-039", "question %q: schemaHash must be 64 hex characters", q.ID)
		}
	}
}

func knownRole(r survey.Role) bool {
	for _, k := range survey.KnownRoles {
		if r == k {
			return true
		}
	}
	return false
}
