package meta

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSetGetDel(t *testing.T) {
	m := New(nil)
	m.Set(KeyNotes, "split with flatmate")
	if v, ok := m.Get(KeyNotes); !ok || v != "split with flatmate" {
		t.Fatalf("get after set: %q %v", v, ok)
	}
	m.Del(KeyNotes)
	if _, ok := m.Get(KeyNotes); ok {
		t.Fatalf("expected key removed")
	}
}

func TestSetEnforcesLimits(t *testing.T) {
	m := New(nil)
	m.Set("", "value")
	m.Set(strings.Repeat("k", MaxKeyLen+1), "value")
	m.Set("big", strings.Repeat("v", MaxValLen+1))
	if len(m) != 0 {
		t.Fatalf("expected oversized pairs dropped, got %d entries", len(m))
	}
	for i := 0; i < MaxPairs; i++ {
		m.Set("k"+string(rune('a'+i)), "v")
	}
	m.Set("overflow", "v")
	if len(m) != MaxPairs {
		t.Fatalf("expected %d entries, got %d", MaxPairs, len(m))
	}
}

func TestValidate(t *testing.T) {
	m := New(map[string]string{"a": "1", "b": "2"})
	if err := m.Validate(); err != nil {
		t.Fatalf("valid metadata rejected: %v", err)
	}
	bad := Metadata{strings.Repeat("k", MaxKeyLen+1): "v"}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected key length error")
	}
	bad = Metadata{"k": strings.Repeat("v", MaxValLen+1)}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected value length error")
	}
	big := Metadata{}
	for i := 0; i < MaxPairs; i++ {
		big["key"+string(rune('a'+i))] = strings.Repeat("x", MaxValLen)
	}
	if err := big.Validate(); err == nil {
		t.Fatalf("expected total size error")
	}
}

func TestCloneDetaches(t *testing.T) {
	orig := New(map[string]string{"a": "1"})
	cp := orig.Clone()
	cp.Set("b", "2")
	if _, ok := orig.Get("b"); ok {
		t.Fatalf("clone shares storage with original")
	}
	var nilMeta Metadata
	if got := nilMeta.Clone(); got == nil || len(got) != 0 {
		t.Fatalf("nil clone: %v", got)
	}
}

func TestStableJSON(t *testing.T) {
	m := New(map[string]string{"zeta": "1", "alpha": "2", "mid": "3"})
	want := `{"alpha":"2","mid":"3","zeta":"1"}`
	for i := 0; i < 5; i++ {
		b, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != want {
			t.Fatalf("unstable encoding: %s", b)
		}
	}

	var back Metadata
	if err := json.Unmarshal([]byte(want), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, _ := back.Get("mid"); v != "3" {
		t.Fatalf("roundtrip lost data: %v", back)
	}
	if err := json.Unmarshal([]byte("null"), &back); err != nil {
		t.Fatalf("null: %v", err)
	}
	if back == nil {
		t.Fatalf("null should decode to empty map")
	}
}

func TestReceipt(t *testing.T) {
	m := New(nil)
	if _, ok := m.Receipt(); ok {
		t.Fatalf("unexpected receipt on empty metadata")
	}
	m.Set(KeyReceipt, "receipts/2025/03/abc.png")
	ref, ok := m.Receipt()
	if !ok || ref != "receipts/2025/03/abc.png" {
		t.Fatalf("receipt: %q %v", ref, ok)
	}
}
