package logsink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Result is one audit line in results.jsonl. It never carries key material.
type Result struct {
	Time    time.Time `json:"time"`
	Index   int       `json:"index"`
	Session string    `json:"session"`
	Address string    `json:"address"`
	Proxy   string    `json:"proxy,omitempty"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
}

// Audit appends per-wallet outcomes to <dir>/results.jsonl.
type Audit struct {
	Path string
}

func NewAudit(dir string) *Audit {
	return &Audit{Path: filepath.Join(dir, "results.jsonl")}
}

func (a *Audit) Record(r Result) error {
	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	return AppendJSONL(a.Path, r)
}

func AppendJSONL(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := OpenAppend(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}
