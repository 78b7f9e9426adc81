package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedCatalogRenders(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("status.penalty", map[string]any{"Seconds": 30, "Color": "black"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Penalty: -30s applied to black for repeated one-sided illegality." {
		t.Fatalf("got %q", got)
	}
	if c.Text("outcome.title.aborted", nil, "x") != "Game Aborted" {
		t.Fatalf("aborted title")
	}
}

func TestMissingKeyAndField(t *testing.T) {
	c := Default()
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, err := c.Render("outcome.turns", map[string]any{}); err == nil {
		t.Fatalf("expected missing field error")
	}
	if got := c.Text("no.such.key", nil, "fallback"); got != "fallback" {
		t.Fatalf("Text fallback = %q", got)
	}
	var nilCat *Catalog
	if nilCat.Text("alert", nil, "fb") != "fb" {
		t.Fatalf("nil catalog should fall back")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("outcome:\n  title:\n    win: \"You won\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("outcome.title.win", nil, ""); got != "You won" {
		t.Fatalf("override not applied: %q", got)
	}
	if got := c.Text("outcome.title.loss", nil, ""); got != "Defeat" {
		t.Fatalf("embedded key lost: %q", got)
	}
}

func TestDuplicateOverrideKeys(t *testing.T) {
	dir := t.TempDir()
	body := []byte("alert: \"x {{.Message}}\"\n")
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("limit: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected unsupported value error")
	}
}
