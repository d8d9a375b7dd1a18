package canonical

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// SnapshotEntry is one response's line in the ordered audit record.
// Status is one of "counted", "superseded", "unverified".
type SnapshotEntry struct {
	TxID     string `json:"txId"`
	VoterKey string `json:"voterKey"`
	Slot     uint64 `json:"slot"`
	TxIndex  uint32 `json:"txIndexInBlock"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// SnapshotRecord is the ordered audit record a tally emits. Hashing it with
// the same canonical routine used for survey details gives a reproducibility
// proof: anyone replaying the response set against the same oracle answers
// must land on the same snapshot hash.
type SnapshotRecord struct {
	SurveyHash   string          `json:"surveyHash"`
	Weighting    string          `json:"weighting"`
	Entries      []SnapshotEntry `json:"entries"`
	UniqueVoters int             `json:"uniqueVoters"`
	TotalWeight  any             `json:"totalWeight"`
}

// HashSnapshot computes the blake2b-256 snapshot hash of the audit record.
func HashSnapshot(rec *SnapshotRecord) ([HashSize]byte, error) {
	enc, err := SnapshotBytes(rec)
	if err != nil {
		return [HashSize]byte{}, err
	}
	return HashBytes(enc), nil
}

// SnapshotBytes returns the canonical encoding of the audit record, suitable
// for archiving in a content-addressed store.
func SnapshotBytes(rec *SnapshotRecord) ([]byte, error) {
	if rec == nil {
		return nil, fmt.Errorf("canonical: nil snapshot record")
	}
	entries := make([]any, len(rec.Entries))
	for i, e := range rec.Entries {
		entries[i] = map[string]any{
			"txId":     e.TxID,
			"voterKey": e.VoterKey,
			"slot":     e.Slot,
			"txIndex":  e.TxIndex,
			"status":   e.Status,
			"reason":   e.Reason,
		}
	}
	return Encode(map[string]any{
		"surveyHash":   rec.SurveyHash,
		"weighting":    rec.Weighting,
		"entries":      entries,
		"uniqueVoters": int64(rec.UniqueVoters),
		"totalWeight":  rec.TotalWeight,
	})
}

// CIDv1RawSHA256 returns an IPFS-compatible CIDv1 string (raw multicodec,
// sha2-256 multihash) for archived snapshot bytes.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length, this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}
