package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/t13-mirror/internal/match"
)

func TestLoadFixture_DefaultPhrases(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "matcher_fixture.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Cases) != 6 {
		t.Fatalf("expected 6 cases, got %d", len(f.Cases))
	}
	for _, m := range f.Check() {
		t.Errorf("%s: %s", m.Case, m.Reason)
	}
}

func TestFixture_CustomPhrasesReportMismatch(t *testing.T) {
	f := Fixture{
		Phrases: &match.PhraseSets{Primary: []string{"hello"}, Secondary: []string{"hello"}},
		Cases: []FixtureCase{
			{Name: "locks", Reply: "Hello", ExpectLocked: true},
			{Name: "wrong expectation", Reply: "Hello", ExpectLocked: false},
		},
	}
	got := f.Check()
	if len(got) != 1 {
		t.Fatalf("expected 1 mismatch, got %d: %+v", len(got), got)
	}
	if got[0].Case != "wrong expectation" {
		t.Errorf("unexpected mismatch case %q", got[0].Case)
	}
}

func TestLoadFixture_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFixture(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{"), 0o644)
	if _, err := LoadFixture(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}

	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`{"cases":[]}`), 0o644)
	if _, err := LoadFixture(empty); err == nil {
		t.Error("expected error for fixture without cases")
	}
}
