package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"WalletReg/internal/wallet"
)

func TestAppend_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	s := NewJSONStore(path)

	w := wallet.Identity{Address: "0xabc", PrivateKey: "0x01", Mnemonic: "one two"}
	if err := s.Append(w); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != w {
		t.Errorf("unexpected contents %+v", got)
	}
}

func TestAppend_KeepsExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	existing := `[{"address":"0x1","privateKey":"0xaa","mnemonic":"m1"}]`
	if err := os.WriteFile(path, []byte(existing), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewJSONStore(path)
	if err := s.Append(wallet.Identity{Address: "0x2", PrivateKey: "0xbb", Mnemonic: "m2"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("file is not a json array: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0]["address"] != "0x1" || got[1]["address"] != "0x2" {
		t.Errorf("unexpected order %v", got)
	}
	if got[1]["privateKey"] != "0xbb" || got[1]["mnemonic"] != "m2" {
		t.Errorf("unexpected record %v", got[1])
	}
}

func TestAppend_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewJSONStore(path).Append(wallet.Identity{Address: "0x1"}); err == nil {
		t.Fatal("expected error for corrupt store")
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "{not json" {
		t.Errorf("corrupt file must not be overwritten, got %q", raw)
	}
}

func TestAppend_PreservesUnknownFieldsAndShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	existing := `[{"address":"0x1","privateKey":"0xaa","mnemonic":"","registeredAt":"2024-01-01","points":5},"legacy-string-entry"]`
	if err := os.WriteFile(path, []byte(existing), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := NewJSONStore(path).Append(wallet.Identity{Address: "0x2", PrivateKey: "0xbb"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("file is not a json array: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	first, ok := got[0].(map[string]any)
	if !ok {
		t.Fatalf("first entry is %T", got[0])
	}
	for _, key := range []string{"registeredAt", "points", "mnemonic"} {
		if _, ok := first[key]; !ok {
			t.Errorf("existing key %q dropped: %v", key, first)
		}
	}
	if got[1] != "legacy-string-entry" {
		t.Errorf("non-object entry changed: %v", got[1])
	}
	if last, _ := got[2].(map[string]any); last["address"] != "0x2" {
		t.Errorf("new entry missing: %v", got[2])
	}
}

func TestAppend_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wallets.json")
	s := NewJSONStore(path)
	for i := 0; i < 3; i++ {
		if err := s.Append(wallet.Identity{Address: "0x1"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "wallets.json" {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected files %v", names)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", st.Mode().Perm())
	}
}
