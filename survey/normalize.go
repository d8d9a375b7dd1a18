package survey

import (
	"encoding/json"
	"errors"
	"fmt"
)

// legacyDetails is the v0 single-question shape: the question and its method
// fields sit directly on the details object instead of in a questions array.
type legacyDetails struct {
	QuestionID    string              `json:"questionId"`
	Question      string              `json:"question"`
	MethodType    MethodType          `json:"methodType"`
	Options       []string            `json:"options"`
	MaxSelections int                 `json:"maxSelections"`
	Numeric       *NumericConstraints `json:"numericConstraints"`
	Custom        *CustomMethod       `json:"customMethod"`
}

// NormalizeDetails decodes survey details from JSON, folding the legacy
// single-question shape into the canonical Questions slice. All core logic
// (hashing, validation, tallying) sees only the canonical shape; shape
// branching stops at this boundary.
func NormalizeDetails(raw []byte) (*Details, error) {
	var d Details
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("survey details: %w", err)
	}
	if len(d.Questions) > 0 {
		return &d, nil
	}

	var legacy legacyDetails
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("survey details: %w", err)
	}
	if legacy.Question == "" {
		return nil, errors.New("survey details: no questions and no legacy question field")
	}
	id := legacy.QuestionID
	if id == "" {
		id = "q1"
	}
	d.Questions = []Question{{
		ID:            id,
		Question:      legacy.Question,
		MethodType:    legacy.MethodType,
		Options:       legacy.Options,
		MaxSelections: legacy.MaxSelections,
		Numeric:       legacy.Numeric,
		Custom:        legacy.Custom,
	}}
	return &d, nil
}

// NormalizeResponse decodes a survey response from JSON.
//
// The legacy response shape carried a single answer's fields inline; it is
// folded into the canonical Answers slice the same way NormalizeDetails folds
// questions.
func NormalizeResponse(raw []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("survey response: %w", err)
	}
	if len(r.Answers) > 0 {
		return &r, nil
	}

	var legacy struct {
		QuestionID   string   `json:"questionId"`
		Selection    []int    `json:"selection"`
		NumericValue *float64 `json:"numericValue"`
		CustomValue  string   `json:"customValue"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("survey response: %w", err)
	}
	if legacy.QuestionID == "" {
		return nil, errors.New("survey response: no answers and no legacy answer fields")
	}
	r.Answers = []Answer{{
		QuestionID:   legacy.QuestionID,
		Selection:    legacy.Selection,
		NumericValue: legacy.NumericValue,
		CustomValue:  legacy.CustomValue,
	}}
	return &r, nil
}
