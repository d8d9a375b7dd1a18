package schema

import (
	"strings"
	"testing"

	"pollmark.io/pollmark/survey"
)

func validDetails() *survey.Details {
	return &survey.Details{
		SpecVersion: "1.0",
		Title:       "Parameter preferences",
		Description: "Signal preferred protocol parameters",
		Questions: []survey.Question{
			{
				ID:         "choice",
				Question:   "Adopt the change?",
				MethodType: survey.MethodSingleChoice,
				Options:    []string{"Yes", "No"},
			},
			{
				ID:            "multi",
				Question:      "Which areas matter most?",
				MethodType:    survey.MethodMultiSelect,
				Options:       []string{"Fees", "Security", "Throughput"},
				MaxSelections: 2,
			},
			{
				ID:         "range",
				Question:   "Target value",
				MethodType: survey.MethodNumericRange,
				Numeric:    &survey.NumericConstraints{MinValue: 0, MaxValue: 100, Step: f64(10)},
			},
			{
				ID:         "custom",
				Question:   "Anything else?",
				MethodType: "https://example.org/methods/free-text",
				Custom: &survey.CustomMethod{
					SchemaURI:     "https://example.org/schemas/free-text.json",
					HashAlgorithm: AcceptedHashAlgorithm,
					SchemaHash:    strings.Repeat("ab", 32),
				},
			},
		},
		Eligibility:   []survey.Role{survey.RoleStakeholder},
		VoteWeighting: survey.WeightingCredentialBased,
		Lifecycle:     &survey.Lifecycle{Unit: "epoch", Start: 100, End: 120},
	}
}

func f64(v float64) *float64 { return &v }

func validResponse() *survey.Response {
	return &survey.Response{
		SpecVersion: "1.0",
		SurveyTxID:  strings.Repeat("0a", 32),
		SurveyHash:  strings.Repeat("1b", 32),
		Answers: []survey.Answer{
			{QuestionID: "choice", Selection: []int{0}},
			{QuestionID: "multi", Selection: []int{0, 2}},
			{QuestionID: "range", NumericValue: f64(30)},
			{QuestionID: "custom", CustomValue: "looks good"},
		},
	}
}

func TestValidateDetailsAccepts(t *testing.T) {
	res := ValidateDetails(validDetails())
	if !res.Valid {
		t.Fatalf("valid details rejected: %v", res.Errors)
	}
}

func TestValidateDetailsRejects(t *testing.T) {
	cases := map[string]struct {
		mutate func(*survey.Details)
		rule   string
	}{
		"NoQuestions":               {func(d *survey.Details) { d.Questions = nil }, "SCHEMA-DET-010"},
		"EmptyTitle":                {func(d *survey.Details) { d.Title = "" }, "SCHEMA-DET-003"},
		"DuplicateQuestionID":       {func(d *survey.Details) { d.Questions[1].ID = "choice" }, "SCHEMA-DET-012"},
		"SingleChoiceOneOption":     {func(d *survey.Details) { d.Questions[0].Options = []string{"Yes"} }, "SCHEMA-DET-020"},
		"SingleChoiceWithNumeric":   {func(d *survey.Details) { d.Questions[0].Numeric = &survey.NumericConstraints{MaxValue: 1} }, "SCHEMA-DET-021"},
		"SingleChoiceMaxSelections": {func(d *survey.Details) { d.Questions[0].MaxSelections = 1 }, "SCHEMA-DET-023"},
		"MultiSelectNoMax":          {func(d *survey.Details) { d.Questions[1].MaxSelections = 0 }, "SCHEMA-DET-025"},
		"MultiSelectMaxTooLarge":    {func(d *survey.Details) { d.Questions[1].MaxSelections = 5 }, "SCHEMA-DET-026"},
		"NumericRangeNoConstraints": {func(d *survey.Details) { d.Questions[2].Numeric = nil }, "SCHEMA-DET-030"},
		"NumericRangeMinAboveMax":   {func(d *survey.Details) { d.Questions[2].Numeric.MinValue = 200 }, "SCHEMA-DET-031"},
		"NumericRangeNegativeStep":  {func(d *survey.Details) { d.Questions[2].Numeric.Step = f64(-1) }, "SCHEMA-DET-032"},
		"NumericRangeZeroStep":      {func(d *survey.Details) { d.Questions[2].Numeric.Step = f64(0) }, "SCHEMA-DET-032"},
		"NumericRangeWithOptions":   {func(d *survey.Details) { d.Questions[2].Options = []string{"a"} }, "SCHEMA-DET-033"},
		"CustomWithoutMethod":       {func(d *survey.Details) { d.Questions[3].Custom = nil }, "SCHEMA-DET-036"},
		"CustomWrongHashAlg":        {func(d *survey.Details) { d.Questions[3].Custom.HashAlgorithm = "sha256" }, "SCHEMA-DET-038"},
		"CustomBadSchemaHash":       {func(d *survey.Details) { d.Questions[3].Custom.SchemaHash = "zz" }, "SCHEMA-DET-039"},
		"UnknownRole":               {func(d *survey.Details) { d.Eligibility = []survey.Role{"Whale"} }, "SCHEMA-DET-040"},
		"UnknownWeighting":          {func(d *survey.Details) { d.VoteWeighting = "quadratic" }, "SCHEMA-DET-041"},
		"LifecycleBadUnit":          {func(d *survey.Details) { d.Lifecycle.Unit = "block" }, "SCHEMA-DET-042"},
		"LifecycleEndBeforeStart":   {func(d *survey.Details) { d.Lifecycle.End = 50 }, "SCHEMA-DET-043"},
		"ReferenceActionBadTxID": {func(d *survey.Details) {
			d.ReferenceAction = &survey.ReferenceAction{TxID: "abc", Index: 0}
		}, "SCHEMA-DET-044"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d := validDetails()
			tc.mutate(d)
			res := ValidateDetails(d)
			if res.Valid {
				t.Fatal("expected invalid result")
			}
			if !hasRule(res, tc.rule) {
				t.Fatalf("missing rule %s in %v", tc.rule, ruleIDs(res))
			}
		})
	}
}

func TestValidateDetailsAccumulates(t *testing.T) {
	d := validDetails()
	d.Title = ""
	d.Questions[0].Options = nil
	d.Questions[2].Numeric = nil
	res := ValidateDetails(d)
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	if len(res.Errors) < 3 {
		t.Fatalf("expected accumulated errors, got %v", ruleIDs(res))
	}
}

func TestValidateResponseAccepts(t *testing.T) {
	res := ValidateResponse(validResponse(), validDetails())
	if !res.Valid {
		t.Fatalf("valid response rejected: %v", res.Errors)
	}
}

func TestValidateResponseRejects(t *testing.T) {
	cases := map[string]struct {
		mutate func(*survey.Response)
		rule   string
	}{
		"NoAnswers":              {func(r *survey.Response) { r.Answers = nil }, "SCHEMA-RSP-010"},
		"BadSurveyTxID":          {func(r *survey.Response) { r.SurveyTxID = "xyz" }, "SCHEMA-RSP-004"},
		"BadSurveyHash":          {func(r *survey.Response) { r.SurveyHash = "short" }, "SCHEMA-RSP-006"},
		"UnknownQuestion":        {func(r *survey.Response) { r.Answers[0].QuestionID = "ghost" }, "SCHEMA-RSP-013"},
		"DuplicateQuestion":      {func(r *survey.Response) { r.Answers[1].QuestionID = "choice" }, "SCHEMA-RSP-012"},
		"SingleChoiceTwoIndices": {func(r *survey.Response) { r.Answers[0].Selection = []int{0, 1} }, "SCHEMA-RSP-021"},
		"SingleChoiceOutOfRange": {func(r *survey.Response) { r.Answers[0].Selection = []int{7} }, "SCHEMA-RSP-025"},
		"SingleChoiceNoVariant":  {func(r *survey.Response) { r.Answers[0].Selection = nil }, "SCHEMA-RSP-020"},
		"MultiSelectTooMany":     {func(r *survey.Response) { r.Answers[1].Selection = []int{0, 1, 2} }, "SCHEMA-RSP-024"},
		"MultiSelectDuplicate":   {func(r *survey.Response) { r.Answers[1].Selection = []int{1, 1} }, "SCHEMA-RSP-026"},
		"NumericOutOfRange":      {func(r *survey.Response) { r.Answers[2].NumericValue = f64(150) }, "SCHEMA-RSP-031"},
		"NumericOffStep":         {func(r *survey.Response) { r.Answers[2].NumericValue = f64(15) }, "SCHEMA-RSP-032"},
		"NumericMissingValue":    {func(r *survey.Response) { r.Answers[2].NumericValue = nil }, "SCHEMA-RSP-030"},
		"CustomMissingValue":     {func(r *survey.Response) { r.Answers[3].CustomValue = "" }, "SCHEMA-RSP-040"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := validResponse()
			tc.mutate(r)
			res := ValidateResponse(r, validDetails())
			if res.Valid {
				t.Fatal("expected invalid result")
			}
			if !hasRule(res, tc.rule) {
				t.Fatalf("missing rule %s in %v", tc.rule, ruleIDs(res))
			}
		})
	}
}

func TestValidateResponseMultiVariantBlocks(t *testing.T) {
	r := validResponse()
	// Populate two variants on one answer: reported once, nothing else
	// checked for that answer.
	r.Answers[0].NumericValue = f64(1)
	res := ValidateResponse(r, validDetails())
	if res.Valid {
		t.Fatal("expected invalid result")
	}
	count := 0
	for _, v := range res.Errors {
		if v.RuleID == "SCHEMA-RSP-014" {
			count++
		}
		if v.RuleID == "SCHEMA-RSP-020" || v.RuleID == "SCHEMA-RSP-021" {
			t.Fatalf("variant conflict must block further checks, got %s", v.RuleID)
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one variant-conflict error, got %d", count)
	}
}

func hasRule(res Result, ruleID string) bool {
	for _, v := range res.Errors {
		if v.RuleID == ruleID {
			return true
		}
	}
	return false
}

func ruleIDs(res Result) []string {
	ids := make([]string, len(res.Errors))
	for i, v := range res.Errors {
		ids[i] = v.RuleID
	}
	return ids
}
