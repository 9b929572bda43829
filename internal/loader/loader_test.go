package loader

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// testdataDir returns the absolute path to the testdata/docs directory.
func testdataDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to determine test file location")
	}
	root := filepath.Join(filepath.Dir(filename), "..", "..", "testdata", "docs")
	abs, err := filepath.Abs(root)
	if err != nil {
		t.Fatalf("resolve testdata path: %v", err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		t.Fatalf("testdata dir does not exist: %s", abs)
	}
	return abs
}

func sources(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Source
	}
	return out
}

func TestLoad_Directory(t *testing.T) {
	docs, err := Load(Config{Root: testdataDir(t)})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []string{"cancel.txt", "policies/shipping.md", "policies/warranty.text", "refund.txt"}
	got := sources(docs)
	if len(got) != len(want) {
		t.Fatalf("Load() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("doc %d: got %q, want %q", i, got[i], want[i])
		}
	}

	for _, d := range docs {
		if d.Text == "" {
			t.Errorf("%s: empty text", d.Source)
		}
		if !filepath.IsAbs(d.Path) {
			t.Errorf("%s: path %q is not absolute", d.Source, d.Path)
		}
	}
}

func TestLoad_IncludeExclude(t *testing.T) {
	dir := testdataDir(t)

	docs, err := Load(Config{Root: dir, Include: []string{"*.md"}})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := sources(docs); len(got) != 1 || got[0] != "policies/shipping.md" {
		t.Errorf("include *.md = %v", got)
	}

	docs, err = Load(Config{Root: dir, Exclude: []string{"policies/**"}})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	for _, d := range docs {
		if filepath.Dir(d.Source) == "policies" {
			t.Errorf("excluded file loaded: %s", d.Source)
		}
	}
}

func TestLoad_SkipsLargeAndBinaryFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("ok.txt", []byte("small file"))
	write("big.txt", make([]byte, 2048))
	write("nul.txt", []byte("abc\x00def"))
	write("latin1.txt", []byte{0xe9, 0x74, 0xe9})

	docs, err := Load(Config{Root: dir, MaxFileSize: 1024})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := sources(docs); len(got) != 1 || got[0] != "ok.txt" {
		t.Errorf("Load() = %v, want [ok.txt]", got)
	}
}

func TestLoad_SingleFile(t *testing.T) {
	docs, err := Load(Config{Root: filepath.Join(testdataDir(t), "policies", "shipping.md")})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(docs) != 1 || docs[0].Source != "shipping.md" {
		t.Fatalf("Load() = %v", sources(docs))
	}
}

func TestLoadFile_Unsupported(t *testing.T) {
	_, err := LoadFile(filepath.Join(testdataDir(t), "policies", "settings.yaml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	if _, err := Load(Config{Root: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestSupported(t *testing.T) {
	tests := map[string]bool{
		"a.txt":      true,
		"README.MD":  true,
		"notes.text": true,
		"main.go":    false,
		"Makefile":   false,
		"doc.pdf":    false,
	}
	for name, want := range tests {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		path     string
		patterns []string
		want     bool
	}{
		{"notes/a.md", []string{"*.md"}, true},
		{"notes/a.md", []string{"notes/**"}, true},
		{"notes/a.md", []string{"other/**"}, false},
		{"a.txt", nil, false},
	}
	for _, tt := range tests {
		if got := matchesAny(tt.path, tt.patterns); got != tt.want {
			t.Errorf("matchesAny(%q, %v) = %v, want %v", tt.path, tt.patterns, got, tt.want)
		}
	}
}
