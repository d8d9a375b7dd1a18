// Package tally turns a set of stored responses into deterministic,
// reproducible results.
//
// Ordering and supersession follow chain position only: responses are sorted
// by (slot, index in block) and a voter's later submission replaces the
// earlier one. Two runs over the same responses and the same oracle answers
// produce byte-identical snapshots.
package tally

import (
	"context"
	"fmt"
	"math"
	"sort"

	"pollmark.io/pollmark/canonical"
	"pollmark.io/pollmark/survey"
)

// Snapshot entry statuses.
const (
	StatusCounted    = "counted"
	StatusSuperseded = "superseded"
	StatusUnverified = "unverified"
)

// LovelacePerADA converts on-chain lovelace amounts into ADA weights.
const LovelacePerADA = 1_000_000

// MaxHistogramBins caps numeric result histograms.
const MaxHistogramBins = 10

// OptionCount is the tally for one option of a choice question. Count is the
// number of counted voters; Weight is their summed voting weight.
type OptionCount struct {
	Index  int     `json:"index"`
	Option string  `json:"option"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// HistogramBin is one interval of a numeric result histogram. The final bin
// includes its upper bound.
type HistogramBin struct {
	From   float64 `json:"from"`
	To     float64 `json:"to"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// NumericSummary aggregates numericRange answers. Mean, median, min and max
// are over the raw values, one per counted voter.
type NumericSummary struct {
	Count     int            `json:"count"`
	Mean      float64        `json:"mean"`
	Median    float64        `json:"median"`
	Min       float64        `json:"min"`
	Max       float64        `json:"max"`
	Histogram []HistogramBin `json:"histogram,omitempty"`
}

// CustomAnswer is one counted answer to a custom-method question, passed
// through opaquely with its voter's weight.
type CustomAnswer struct {
	VoterKey string  `json:"voterKey"`
	Value    string  `json:"value"`
	Weight   float64 `json:"weight"`
}

// QuestionResult is the aggregated outcome for one question.
type QuestionResult struct {
	QuestionID string            `json:"questionId"`
	MethodType survey.MethodType `json:"methodType"`
	Options    []OptionCount     `json:"options,omitempty"`
	Numeric    *NumericSummary   `json:"numeric,omitempty"`
	Custom     []CustomAnswer    `json:"custom,omitempty"`
}

// Result is a full tally. TotalResponses counts every submission seen;
// UniqueVoters and TotalWeight cover only the counted (verified, deduplicated)
// set. SnapshotHash and SnapshotCID identify the audit record.
type Result struct {
	SurveyHash     string                    `json:"surveyHash"`
	Weighting      survey.Weighting          `json:"weighting"`
	TotalResponses int                       `json:"totalResponses"`
	UniqueVoters   int                       `json:"uniqueVoters"`
	TotalWeight    float64                   `json:"totalWeight"`
	Questions      []QuestionResult          `json:"questions"`
	Entries        []canonical.SnapshotEntry `json:"entries"`
	SnapshotHash   string                    `json:"snapshotHash"`
	SnapshotCID    string                    `json:"snapshotCid"`
}

// Engine computes tallies. Stake is consulted only for stake-based surveys
// and may be nil otherwise.
type Engine struct {
	Stake StakeLookup
}

// Tally aggregates responses against the survey definition.
//
// Unverified responses are recorded in the audit trail but never counted.
// Among a voter's verified responses the one latest in chain order wins.
// A stake lookup failure aborts the tally rather than silently zeroing a
// voter's weight.
func (e *Engine) Tally(ctx context.Context, details *survey.Details, surveyHash string, responses []survey.StoredResponse) (*Result, error) {
	if details == nil {
		return nil, fmt.Errorf("tally: nil survey details")
	}
	weighting := details.VoteWeighting
	if weighting == "" {
		weighting = survey.WeightingCredentialBased
	}
	if weighting == survey.WeightingStakeBased && e.Stake == nil {
		return nil, fmt.Errorf("tally: stake-based survey requires a stake lookup")
	}

	ordered := sortResponses(responses)

	// Last verified response per voter wins.
	latest := make(map[string]int, len(ordered))
	for i := range ordered {
		r := &ordered[i]
		if !r.Verified || r.VoterKey() == "" {
			continue
		}
		latest[r.VoterKey()] = i
	}

	entries := make([]canonical.SnapshotEntry, 0, len(ordered))
	var counted []*survey.StoredResponse
	for i := range ordered {
		r := &ordered[i]
		entry := canonical.SnapshotEntry{
			TxID:     r.TxID,
			VoterKey: r.VoterKey(),
			Slot:     r.Position.Slot,
			TxIndex:  r.Position.TxIndex,
		}
		switch {
		case !r.Verified || r.VoterKey() == "":
			entry.Status = StatusUnverified
			entry.Reason = r.VerificationReason
		case latest[r.VoterKey()] != i:
			entry.Status = StatusSuperseded
		default:
			entry.Status = StatusCounted
			counted = append(counted, r)
		}
		entries = append(entries, entry)
	}

	weights := make(map[string]float64, len(counted))
	totalWeight := 0.0
	for _, r := range counted {
		w := 1.0
		if weighting == survey.WeightingStakeBased {
			lovelace, _, err := e.Stake.Stake(ctx, r)
			if err != nil {
				return nil, fmt.Errorf("tally: stake lookup for %s: %w", r.VoterKey(), err)
			}
			w = float64(lovelace) / LovelacePerADA
		}
		weights[r.VoterKey()] = w
		totalWeight += w
	}

	questions := make([]QuestionResult, 0, len(details.Questions))
	for qi := range details.Questions {
		questions = append(questions, aggregateQuestion(&details.Questions[qi], counted, weights))
	}

	rec := &canonical.SnapshotRecord{
		SurveyHash:   surveyHash,
		Weighting:    string(weighting),
		Entries:      entries,
		UniqueVoters: len(counted),
		TotalWeight:  canonical.CanonicalNumber(totalWeight),
	}
	snapBytes, err := canonical.SnapshotBytes(rec)
	if err != nil {
		return nil, err
	}
	snapHash := canonical.HashBytes(snapBytes)

	return &Result{
		SurveyHash:     surveyHash,
		Weighting:      weighting,
		TotalResponses: len(responses),
		UniqueVoters:   len(counted),
		TotalWeight:    totalWeight,
		Questions:      questions,
		Entries:        entries,
		SnapshotHash:   fmt.Sprintf("%x", snapHash[:]),
		SnapshotCID:    canonical.CIDv1RawSHA256(snapBytes),
	}, nil
}

// sortResponses orders by chain position ascending, with the transaction id
// as a lexicographic tie-break for equal positions.
func sortResponses(responses []survey.StoredResponse) []survey.StoredResponse {
	ordered := make([]survey.StoredResponse, len(responses))
	copy(ordered, responses)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Position != b.Position {
			return a.Position.Less(b.Position)
		}
		return a.TxID < b.TxID
	})
	return ordered
}

func aggregateQuestion(q *survey.Question, counted []*survey.StoredResponse, weights map[string]float64) QuestionResult {
	res := QuestionResult{QuestionID: q.ID, MethodType: q.MethodType}

	switch {
	case q.MethodType == survey.MethodSingleChoice || q.MethodType == survey.MethodMultiSelect:
		res.Options = make([]OptionCount, len(q.Options))
		for i, opt := range q.Options {
			res.Options[i] = OptionCount{Index: i, Option: opt}
		}
		for _, r := range counted {
			a := findAnswer(r, q.ID)
			if a == nil {
				continue
			}
			w := weights[r.VoterKey()]
			for _, idx := range a.Selection {
				if idx < 0 || idx >= len(res.Options) {
					continue
				}
				res.Options[idx].Count++
				res.Options[idx].Weight += w
			}
		}

	case q.MethodType == survey.MethodNumericRange:
		var values []float64
		var valueWeights []float64
		for _, r := range counted {
			a := findAnswer(r, q.ID)
			if a == nil || a.NumericValue == nil {
				continue
			}
			values = append(values, *a.NumericValue)
			valueWeights = append(valueWeights, weights[r.VoterKey()])
		}
		res.Numeric = summarizeNumeric(values, valueWeights, q.Numeric)

	default: // custom method
		for _, r := range counted {
			a := findAnswer(r, q.ID)
			if a == nil || a.CustomValue == "" {
				continue
			}
			res.Custom = append(res.Custom, CustomAnswer{
				VoterKey: r.VoterKey(),
				Value:    a.CustomValue,
				Weight:   weights[r.VoterKey()],
			})
		}
	}
	return res
}

func findAnswer(r *survey.StoredResponse, questionID string) *survey.Answer {
	for i := range r.Answers {
		if r.Answers[i].QuestionID == questionID {
			return &r.Answers[i]
		}
	}
	return nil
}

func summarizeNumeric(values, weights []float64, c *survey.NumericConstraints) *NumericSummary {
	if len(values) == 0 {
		return &NumericSummary{}
	}
	s := &NumericSummary{Count: len(values), Min: values[0], Max: values[0]}
	sum := 0.0
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		s.Median = sorted[mid]
	} else {
		s.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	if c != nil && c.MaxValue > c.MinValue {
		s.Histogram = histogram(values, weights, c)
	}
	return s
}

// histogram buckets values over the declared [min, max] interval. When the
// step grid fits, one bin per step value; otherwise up to MaxHistogramBins
// equal-width bins, the last including its upper bound.
func histogram(values, weights []float64, c *survey.NumericConstraints) []HistogramBin {
	span := c.MaxValue - c.MinValue
	bins := MaxHistogramBins
	if c.Step != nil && *c.Step > 0 {
		if n := int(math.Floor(span / *c.Step)) + 1; n < bins {
			bins = n
		}
	}
	if bins < 1 {
		bins = 1
	}
	width := span / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].From = c.MinValue + float64(i)*width
		out[i].To = c.MinValue + float64(i+1)*width
	}
	out[bins-1].To = c.MaxValue
	for i, v := range values {
		idx := int((v - c.MinValue) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
		out[idx].Weight += weights[i]
	}
	return out
}
