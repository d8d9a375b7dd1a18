package oracleconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oracle.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `{"target": "127.0.0.1:9090", "timeout_ms": 3000, "cache_ttl_ms": 60000}`))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Target != "127.0.0.1:9090" || cfg.TimeoutMS != 3000 || cfg.CacheTTLMS != 60000 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFileRejects(t *testing.T) {
	cases := map[string]string{
		"MissingTarget":   `{"timeout_ms": 100}`,
		"NegativeTimeout": `{"target": "x", "timeout_ms": -1}`,
		"BadJSON":         `{target}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := LoadFile(""); err == nil {
		t.Fatal("empty path must fail")
	}
}
