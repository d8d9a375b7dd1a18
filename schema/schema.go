// Package schema validates survey definitions and responses structurally.
//
// Validation accumulates every violation rather than stopping at the first;
// the one exception is an answer populating more than one value variant,
// which is reported as a single blocking error for that answer. Violations
// carry stable rule IDs; callers should branch on those, not on messages.
package schema

import "fmt"

// Violation is one named rule failure.
type Violation struct {
	RuleID  string `json:"ruleId"`
	Message string `json:"message"`
}

func (v *Violation) Error() string {
	if v == nil {
		return "<nil>"
	}
	return v.Message
}

// Result is the outcome of a validation pass. Errors is ordered
// deterministically: rule order within each question/answer, questions and
// answers in sequence order.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []*Violation `json:"errors,omitempty"`
}

type collector struct {
	violations []*Violation
}

func (c *collector) addf(ruleID, format string, args ...any) {
	c.violations = append(c.violations, &Violation{RuleID: ruleID, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) result() Result {
	return Result{Valid: len(c.violations) == 0, Errors: c.violations}
}
