package survey

import (
	"strings"
	"testing"
)

func TestNormalizeDetailsCanonicalShape(t *testing.T) {
	raw := []byte(`{
		"specVersion": "1.0",
		"title": "Treasury direction",
		"questions": [
			{"questionId": "q1", "question": "Approve?", "methodType": "singleChoice", "options": ["Yes", "No"]}
		]
	}`)
	d, err := NormalizeDetails(raw)
	if err != nil {
		t.Fatalf("NormalizeDetails: %v", err)
	}
	if len(d.Questions) != 1 || d.Questions[0].ID != "q1" {
		t.Fatalf("questions = %+v", d.Questions)
	}
}

func TestNormalizeDetailsLegacyShape(t *testing.T) {
	raw := []byte(`{
		"specVersion": "1.0",
		"title": "Treasury direction",
		"question": "Approve?",
		"methodType": "singleChoice",
		"options": ["Yes", "No"]
	}`)
	d, err := NormalizeDetails(raw)
	if err != nil {
		t.Fatalf("NormalizeDetails: %v", err)
	}
	if len(d.Questions) != 1 {
		t.Fatalf("legacy shape must fold to one question, got %d", len(d.Questions))
	}
	q := d.Questions[0]
	if q.ID != "q1" {
		t.Fatalf("legacy question id defaults to q1, got %q", q.ID)
	}
	if q.Question != "Approve?" || q.MethodType != MethodSingleChoice || len(q.Options) != 2 {
		t.Fatalf("legacy fields lost: %+v", q)
	}
}

func TestNormalizeDetailsEmpty(t *testing.T) {
	if _, err := NormalizeDetails([]byte(`{"specVersion": "1.0", "title": "x"}`)); err == nil {
		t.Fatal("details with neither questions nor a legacy question must fail")
	}
}

func TestNormalizeResponseLegacyShape(t *testing.T) {
	raw := []byte(`{
		"specVersion": "1.0",
		"surveyTxId": "` + strings.Repeat("0a", 32) + `",
		"surveyHash": "` + strings.Repeat("1b", 32) + `",
		"questionId": "q1",
		"selection": [0]
	}`)
	r, err := NormalizeResponse(raw)
	if err != nil {
		t.Fatalf("NormalizeResponse: %v", err)
	}
	if len(r.Answers) != 1 || r.Answers[0].QuestionID != "q1" || len(r.Answers[0].Selection) != 1 {
		t.Fatalf("answers = %+v", r.Answers)
	}
}

func TestVoterKeyPrefersAddress(t *testing.T) {
	r := &StoredResponse{VoterAddress: "addr1abc", CanonicalCredential: "drep1xyz"}
	if r.VoterKey() != "addr1abc" {
		t.Fatalf("VoterKey = %q", r.VoterKey())
	}
	r.VoterAddress = ""
	if r.VoterKey() != "drep1xyz" {
		t.Fatalf("VoterKey = %q", r.VoterKey())
	}
}

func TestChainPositionLess(t *testing.T) {
	a := ChainPosition{Slot: 10, TxIndex: 3}
	b := ChainPosition{Slot: 10, TxIndex: 4}
	c := ChainPosition{Slot: 11, TxIndex: 0}
	if !a.Less(b) || !b.Less(c) || c.Less(a) {
		t.Fatal("chain position ordering broken")
	}
}

func TestEnvelopeRoundTripWithChunking(t *testing.T) {
	long := strings.Repeat("a", 200)
	env := &Envelope{
		Msg: []string{"survey"},
		Details: &Details{
			SpecVersion: "1.0",
			Title:       "Treasury direction",
			Description: long,
			Questions: []Question{
				{ID: "q1", Question: "Approve?", MethodType: MethodSingleChoice, Options: []string{"Yes", "No"}},
			},
		},
	}
	metadata, err := EncodeEnvelope(env)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}

	// The long description must be carried as an ordered chunk array whose
	// elements all fit the 64-byte metadata string cap.
	body := metadata["17"].(map[string]any)
	details := body["surveyDetails"].(map[string]any)
	chunks, ok := details["description"].([]any)
	if !ok {
		t.Fatalf("long description not chunked: %T", details["description"])
	}
	for i, c := range chunks {
		if len(c.(string)) > 64 {
			t.Fatalf("chunk %d exceeds 64 bytes", i)
		}
	}

	back, err := DecodeEnvelope(metadata)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if back.Details == nil {
		t.Fatal("details lost in round trip")
	}
	if back.Details.Description != long {
		t.Fatal("chunked description not rejoined")
	}
	if len(back.Details.Questions) != 1 || len(back.Details.Questions[0].Options) != 2 {
		t.Fatalf("questions mangled: %+v", back.Details.Questions)
	}
	if len(back.Msg) != 1 || back.Msg[0] != "survey" {
		t.Fatalf("msg mangled: %+v", back.Msg)
	}
}

func TestEnvelopeExactlyOnePayload(t *testing.T) {
	if _, err := EncodeEnvelope(&Envelope{}); err == nil {
		t.Fatal("empty envelope must be rejected")
	}
	both := &Envelope{Details: &Details{}, Response: &Response{}}
	if _, err := EncodeEnvelope(both); err == nil {
		t.Fatal("envelope with both payloads must be rejected")
	}
}

func TestEnvelopeResponseRoundTrip(t *testing.T) {
	env := &Envelope{
		Response: &Response{
			SpecVersion: "1.0",
			SurveyTxID:  strings.Repeat("0a", 32),
			SurveyHash:  strings.Repeat("1b", 32),
			Answers:     []Answer{{QuestionID: "q1", Selection: []int{1}}},
		},
	}
	metadata, err := EncodeEnvelope(env)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	back, err := DecodeEnvelope(metadata)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if back.Response == nil || back.Response.SurveyTxID != env.Response.SurveyTxID {
		t.Fatalf("response mangled: %+v", back.Response)
	}
	if len(back.Response.Answers) != 1 || back.Response.Answers[0].Selection[0] != 1 {
		t.Fatalf("answers mangled: %+v", back.Response.Answers)
	}
}
