package schema

import (
	"math"

	"pollmark.io/pollmark/codec"
	"pollmark.io/pollmark/survey"
)

// stepEpsilon absorbs float noise when checking step alignment.
const stepEpsilon = 1e-9

// ValidateResponse checks a response against the survey it answers. The
// survey hash itself is verified separately (canonical.VerifySurveyHash);
// this pass is purely structural.
func ValidateResponse(r *survey.Response, d *survey.Details) Result {
	var c collector
	if r == nil {
		c.addf("SCHEMA-RSP-001", "survey response missing")
		return c.result()
	}
	if d == nil {
		c.addf("SCHEMA-RSP-002", "survey details missing")
		return c.result()
	}
	if r.SurveyTxID == "" {
		c.addf("SCHEMA-RSP-003", "surveyTxId is required")
	} else if len(r.SurveyTxID) != 64 || !codec.IsHex(r.SurveyTxID) {
		c.addf("SCHEMA-RSP-004", "surveyTxId must be 64 hex characters")
	}
	if r.SurveyHash == "" {
		c.addf("SCHEMA-RSP-005", "surveyHash is required")
	} else if len(r.SurveyHash) != 64 || !codec.IsHex(r.SurveyHash) {
		c.addf("SCHEMA-RSP-006", "surveyHash must be 64 hex characters")
	}
	if len(r.Answers) == 0 {
		c.addf("SCHEMA-RSP-010", "at least one answer is required")
	}

	seen := make(map[string]bool)
	for i := range r.Answers {
		a := &r.Answers[i]
		if a.QuestionID == "" {
			c.addf("SCHEMA-RSP-011", "answer %d: questionId is required", i)
			continue
		}
		if seen[a.QuestionID] {
			c.addf("SCHEMA-RSP-012", "answer %d: duplicate questionId %q", i, a.QuestionID)
		}
		seen[a.QuestionID] = true

		q := d.Question(a.QuestionID)
		if q == nil {
			c.addf("SCHEMA-RSP-013", "answer %d: no question with id %q", i, a.QuestionID)
			continue
		}

		// More than one populated variant is the single blocking case:
		// the answer is unroutable, so nothing else about it is checked.
		if variants := populatedVariants(a); variants > 1 {
			c.addf("SCHEMA-RSP-014", "answer %q: exactly one of selection, numericValue, customValue must be set", a.QuestionID)
			continue
		}

		validateAnswerForQuestion(&c, a, q)
	}
	return c.result()
}

func populatedVariants(a *survey.Answer) int {
	n := 0
	if a.Selection != nil {
		n++
	}
	if a.NumericValue != nil {
		n++
	}
	if a.CustomValue != "" {
		n++
	}
	return n
}

func validateAnswerForQuestion(c *collector, a *survey.Answer, q *survey.Question) {
	switch q.MethodType {
	case survey.MethodSingleChoice:
		if a.Selection == nil {
			c.addf("SCHEMA-RSP-020", "answer %q: singleChoice requires a selection", a.QuestionID)
			return
		}
		if len(a.Selection) != 1 {
			c.addf("SCHEMA-RSP-021", "answer %q: singleChoice requires exactly one selected index", a.QuestionID)
		}
		checkIndices(c, a, q)
	case survey.MethodMultiSelect:
		if a.Selection == nil {
			c.addf("SCHEMA-RSP-022", "answer %q: multiSelect requires a selection", a.QuestionID)
			return
		}
		if len(a.Selection) == 0 {
			c.addf("SCHEMA-RSP-023", "answer %q: multiSelect requires at least one selected index", a.QuestionID)
		}
		if q.MaxSelections > 0 && len(a.Selection) > q.MaxSelections {
			c.addf("SCHEMA-RSP-024", "answer %q: %d selections exceed maxSelections %d", a.QuestionID, len(a.Selection), q.MaxSelections)
		}
		checkIndices(c, a, q)
	case survey.MethodNumericRange:
		if a.NumericValue == nil {
			c.addf("SCHEMA-RSP-030", "answer %q: numericRange requires a numericValue", a.QuestionID)
			return
		}
		if q.Numeric == nil {
			return // definition invalid; reported by ValidateDetails
		}
		v := *a.NumericValue
		if v < q.Numeric.MinValue || v > q.Numeric.MaxValue {
			c.addf("SCHEMA-RSP-031", "answer %q: value %v outside [%v, %v]", a.QuestionID, v, q.Numeric.MinValue, q.Numeric.MaxValue)
		}
		if q.Numeric.Step != nil && *q.Numeric.Step > 0 {
			step := *q.Numeric.Step
			rem := math.Mod(v-q.Numeric.MinValue, step)
			if rem > stepEpsilon && step-rem > stepEpsilon {
				c.addf("SCHEMA-RSP-032", "answer %q: value %v not aligned to step %v from %v", a.QuestionID, v, step, q.Numeric.MinValue)
			}
		}
	default:
		if a.CustomValue == "" {
			c.addf("SCHEMA-RSP-040", "answer %q: custom method requires a customValue", a.QuestionID)
		}
	}
}

func checkIndices(c *collector, a *survey.Answer, q *survey.Question) {
	seen := make(map[int]bool)
	for _, idx := range a.Selection {
		if idx < 0 || idx >= len(q.Options) {
			c.addf("SCHEMA-RSP-025", "answer %q: option index %d out of range [0, %d)", a.QuestionID, idx, len(q.Options))
		}
		if seen[idx] {
			c.addf("SCHEMA-RSP-026", "answer %q: duplicate option index %d", a.QuestionID, idx)
		}
		seen[idx] = true
	}
}
