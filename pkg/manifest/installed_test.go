package manifest

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMigrateLedgerPromotesLegacyCommandName(t *testing.T) {
	raw := []byte(`{"packages":{"foo":{
		"repo_name":"foo/foo",
		"version":"1.0.0",
		"platform":"linux-x86_64",
		"installed_at":"2026-01-01T00:00:00Z",
		"install_path":"/home/u/.wenget/apps/foo",
		"files":["foo"],
		"source":{"type":"bucket","name":"main"},
		"command_name":"foo",
		"asset_name":"foo-linux-x86_64.tar.gz"
	}}}`)

	var l Ledger
	if err := json.Unmarshal(raw, &l); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rec, ok := l.Find("foo")
	if !ok {
		t.Fatal("expected record foo")
	}
	if rec.CommandName != "" {
		t.Errorf("expected legacy command_name cleared, got %q", rec.CommandName)
	}
	if len(rec.CommandNames) != 1 || rec.CommandNames[0] != "foo" {
		t.Errorf("expected command_names [foo], got %v", rec.CommandNames)
	}
}

func TestMigrateLedgerIsIdempotent(t *testing.T) {
	l := Ledger{Packages: map[string]InstalledRecord{
		"foo": {RepoName: "foo/foo", CommandNames: []string{"foo"}},
	}}
	MigrateLedger(&l)
	MigrateLedger(&l)
	rec, _ := l.Find("foo")
	if len(rec.CommandNames) != 1 {
		t.Errorf("expected exactly one command name after repeated migration, got %v", rec.CommandNames)
	}
}

func TestInstalledRecordKeyVariant(t *testing.T) {
	r := InstalledRecord{RepoName: "owner/tool", Variant: "beta"}
	if r.Key() != "owner/tool::beta" {
		t.Errorf("expected variant key, got %q", r.Key())
	}
	if SanitizeKey(r.Key()) != "owner/tool-beta" {
		t.Errorf("expected sanitized key, got %q", SanitizeKey(r.Key()))
	}
}

func TestLedgerUpsertDelete(t *testing.T) {
	l := EmptyLedger()
	l.Upsert(InstalledRecord{
		RepoName:    "owner/tool",
		Version:     "1.2.3",
		InstalledAt: time.Now().UTC(),
		Source:      Local(),
	})
	if _, ok := l.Find("owner/tool"); !ok {
		t.Fatal("expected upserted record to be findable")
	}
	if !l.Delete("owner/tool") {
		t.Error("expected delete to report found")
	}
	if l.Delete("owner/tool") {
		t.Error("expected second delete to report not found")
	}
}
