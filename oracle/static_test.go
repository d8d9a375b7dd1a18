package oracle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStaticChain(t *testing.T) {
	fixture := `{
		"dreps": {"drep1abc": {"retired": false, "amount": 42}},
		"committee": {"deadbeef": true},
		"pools": {"pool1xyz": 9000000}
	}`
	path := filepath.Join(t.TempDir(), "chain.json")
	if err := os.WriteFile(path, []byte(fixture), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadStaticChain(path)
	if err != nil {
		t.Fatalf("LoadStaticChain: %v", err)
	}

	ctx := context.Background()
	drep, err := c.DRepInfo(ctx, "drep1abc")
	if err != nil || !drep.Known || drep.Value.Amount != 42 {
		t.Fatalf("DRepInfo = %+v, %v", drep, err)
	}
	if unknown, _ := c.DRepInfo(ctx, "drep1other"); unknown.Known {
		t.Fatal("unlisted DRep must be unknown")
	}
	member, err := c.IsCommitteeMember(ctx, "deadbeef")
	if err != nil || !member {
		t.Fatalf("IsCommitteeMember = %v, %v", member, err)
	}
	power, err := c.PoolPower(ctx, "pool1xyz")
	if err != nil || !power.Known || power.Value != 9_000_000 {
		t.Fatalf("PoolPower = %+v, %v", power, err)
	}
}

func TestLoadStaticChainBadFile(t *testing.T) {
	if _, err := LoadStaticChain(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing fixture must fail")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStaticChain(path); err == nil {
		t.Fatal("malformed fixture must fail")
	}
}
