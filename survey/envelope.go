package survey

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"pollmark.io/pollmark/codec"
)

// MetadataLabel is the transaction-metadata label all survey envelopes live
// under.
const MetadataLabel = 17

// Envelope is the decoded content of a label-17 metadata entry: an optional
// free-form message plus exactly one of a survey definition or a response.
type Envelope struct {
	Msg      []string  `json:"msg,omitempty"`
	Details  *Details  `json:"surveyDetails,omitempty"`
	Response *Response `json:"surveyResponse,omitempty"`
}

// EncodeEnvelope renders an envelope as a metadata map keyed by the label,
// with every string longer than 64 UTF-8 bytes carried as an ordered chunk
// array (transaction metadata caps individual strings at 64 bytes).
func EncodeEnvelope(env *Envelope) (map[string]any, error) {
	if env == nil {
		return nil, errors.New("envelope: nil envelope")
	}
	if (env.Details == nil) == (env.Response == nil) {
		return nil, errors.New("envelope: exactly one of surveyDetails or surveyResponse required")
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	return map[string]any{
		strconv.Itoa(MetadataLabel): chunkValue(generic),
	}, nil
}

// DecodeEnvelope parses a metadata map produced by EncodeEnvelope (or an
// independent implementation of the same wire format), rejoining chunked
// strings on the way in.
func DecodeEnvelope(metadata map[string]any) (*Envelope, error) {
	body, ok := metadata[strconv.Itoa(MetadataLabel)]
	if !ok {
		return nil, fmt.Errorf("envelope: no label %d entry", MetadataLabel)
	}
	raw, err := json.Marshal(rejoinValue(body))
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}
	if (env.Details == nil) == (env.Response == nil) {
		return nil, errors.New("envelope: exactly one of surveyDetails or surveyResponse required")
	}
	return &env, nil
}

func chunkValue(v any) any {
	switch t := v.(type) {
	case string:
		if len(t) <= codec.MaxMetadataStringBytes {
			return t
		}
		chunks := codec.ChunkUTF8(t, codec.MaxMetadataStringBytes)
		out := make([]any, len(chunks))
		for i, c := range chunks {
			out[i] = c
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = chunkValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = chunkValue(e)
		}
		return out
	default:
		return v
	}
}

func rejoinValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = rejoinValue(e)
		}
		return out
	case []any:
		// Join only on the strict chunk heuristic (some element exactly 64
		// bytes). The encoder never represents a short string as a
		// single-element array, so arrays without a full-size element are
		// genuine string arrays (msg, options) and must survive as arrays.
		if s, ok := stringSlice(t); ok && len(s) > 1 {
			if joined, did := codec.RejoinChunks(s); did {
				return joined
			}
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = rejoinValue(e)
		}
		return out
	default:
		return v
	}
}

func stringSlice(vs []any) ([]string, bool) {
	if len(vs) == 0 {
		return nil, false
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}
