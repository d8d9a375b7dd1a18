package survey

import "time"

// Role is a voting role a survey may restrict eligibility to.
type Role string

const (
	RoleDRep        Role = "DRep"
	RoleSPO         Role = "SPO"
	RoleCC          Role = "CC"
	RoleStakeholder Role = "Stakeholder"
)

// KnownRoles lists the four accepted roles in canonical order.
var KnownRoles = []Role{RoleDRep, RoleSPO, RoleCC, RoleStakeholder}

// Weighting selects how verified votes are weighted at tally time.
type Weighting string

const (
	WeightingStakeBased      Weighting = "stakeBased"
	WeightingCredentialBased Weighting = "credentialBased"
)

// MethodType identifies how a question is answered. Values outside the three
// built-in methods are treated as opaque custom method URIs.
type MethodType string

const (
	MethodSingleChoice MethodType = "singleChoice"
	MethodMultiSelect  MethodType = "multiSelect"
	MethodNumericRange MethodType = "numericRange"
)

// IsCustom reports whether m is an opaque custom method URI rather than one
// of the built-in method types.
func (m MethodType) IsCustom() bool {
	switch m {
	case MethodSingleChoice, MethodMultiSelect, MethodNumericRange:
		return false
	}
	return true
}

// NumericConstraints bounds a numericRange answer. A nil Step accepts any
// value inside the interval; a present step must be positive, so an explicit
// zero is distinguishable from an omitted one and rejected at validation.
type NumericConstraints struct {
	MinValue float64  `json:"minValue"`
	MaxValue float64  `json:"maxValue"`
	Step     *float64 `json:"step,omitempty"`
}

// CustomMethod describes an externally-defined answer method. The schema the
// URI points to is pinned by hash; only blake2b-256 is accepted.
type CustomMethod struct {
	SchemaURI     string `json:"schemaUri"`
	HashAlgorithm string `json:"hashAlgorithm"`
	SchemaHash    string `json:"schemaHash"`
}

// Question is one survey question. Constraint fields are present or absent
// exactly as the method type requires; schema.ValidateDetails enforces this.
type Question struct {
	ID            string              `json:"questionId"`
	Question      string              `json:"question"`
	MethodType    MethodType          `json:"methodType"`
	Options       []string            `json:"options,omitempty"`
	MaxSelections int                 `json:"maxSelections,omitempty"`
	Numeric       *NumericConstraints `json:"numericConstraints,omitempty"`
	Custom        *CustomMethod       `json:"customMethod,omitempty"`
}

// Lifecycle is the interval a survey accepts responses in, expressed in
// epochs or slots.
type Lifecycle struct {
	Unit  string `json:"unit"` // "epoch" or "slot"
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// ReferenceAction points a survey at an on-chain governance action.
type ReferenceAction struct {
	TxID  string `json:"txId"`
	Index uint32 `json:"index"`
}

// Details is an immutable survey definition. Its identity is the blake2b-256
// hash of its canonical encoding (canonical.HashSurveyDetails); it is never
// mutated after being hashed.
type Details struct {
	SpecVersion     string           `json:"specVersion"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Questions       []Question       `json:"questions"`
	Eligibility     []Role           `json:"eligibility,omitempty"`
	VoteWeighting   Weighting        `json:"voteWeighting,omitempty"`
	Lifecycle       *Lifecycle       `json:"lifecycle,omitempty"`
	ReferenceAction *ReferenceAction `json:"referenceAction,omitempty"`
}

// Question returns the question with the given id, or nil.
func (d *Details) Question(id string) *Question {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i]
		}
	}
	return nil
}

// Proof is a signature-based ownership proof attached to a response.
// Key and Signature are hex; Scheme defaults to ed25519 when empty.
type Proof struct {
	Message   string `json:"message"`
	Key       string `json:"key"`
	Signature string `json:"signature"`
	Scheme    string `json:"scheme,omitempty"`
}

// Answer is one answer within a response. Exactly one of Selection,
// NumericValue, CustomValue is populated, matching the referenced question's
// method type.
type Answer struct {
	QuestionID   string   `json:"questionId"`
	Selection    []int    `json:"selection,omitempty"`
	NumericValue *float64 `json:"numericValue,omitempty"`
	CustomValue  string   `json:"customValue,omitempty"`
}

// Response is a submitted set of answers referencing a survey by transaction
// id and content hash.
type Response struct {
	SpecVersion        string   `json:"specVersion"`
	SurveyTxID         string   `json:"surveyTxId"`
	SurveyHash         string   `json:"surveyHash"`
	ResponseCredential string   `json:"responseCredential,omitempty"`
	Proof              *Proof   `json:"proof,omitempty"`
	Answers            []Answer `json:"answers"`
}

// ChainPosition is the (slot, index-in-block) pair of the carrying
// transaction. It totally orders submissions.
type ChainPosition struct {
	Slot    uint64 `json:"slot"`
	TxIndex uint32 `json:"txIndexInBlock"`
}

// Less orders positions ascending by slot, then by index within the block.
func (p ChainPosition) Less(o ChainPosition) bool {
	if p.Slot != o.Slot {
		return p.Slot < o.Slot
	}
	return p.TxIndex < o.TxIndex
}

// StoredResponse is a response enriched at ingestion. The verification fields
// are cached outcomes; recomputing them from the response, the signer address
// and the same oracle answers must reproduce them byte for byte.
type StoredResponse struct {
	Response

	TxID                string        `json:"txId"`
	VoterAddress        string        `json:"voterAddress,omitempty"`
	CanonicalCredential string        `json:"canonicalCredential,omitempty"`
	Verified            bool          `json:"verified"`
	VerificationReason  string        `json:"verificationReason,omitempty"`
	Position            ChainPosition `json:"chainPosition"`
	Timestamp           time.Time     `json:"timestamp"`
}

// VoterKey is the dedup key the tally engine groups by: the observed signer
// address when present, else the resolved canonical credential.
func (r *StoredResponse) VoterKey() string {
	if r.VoterAddress != "" {
		return r.VoterAddress
	}
	return r.CanonicalCredential
}
