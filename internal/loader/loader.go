// Package loader discovers plain-text documents on disk for ingestion.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultMaxFileSize is the maximum file size to load (10 MB).
const DefaultMaxFileSize int64 = 10 << 20

// ErrUnsupportedFormat is returned for files that are not plain text.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// SupportedExtensions lists the file extensions accepted for ingestion.
var SupportedExtensions = []string{".txt", ".md", ".text"}

// Document is a file read from disk, ready to ingest.
type Document struct {
	Path   string // Absolute path on disk.
	Source string // Name the document is indexed under: the path relative to the root.
	Text   string
	Size   int64
}

// Config controls the behaviour of Load.
type Config struct {
	Root        string   // File or directory to load.
	Include     []string // Glob patterns; only matching files are loaded.
	Exclude     []string // Glob patterns; matching files are skipped.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
}

// Supported reports whether name has an accepted extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadFile reads a single document. Its source is the file's base name.
func LoadFile(path string) (Document, error) {
	if !Supported(path) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	if !IsText(data) {
		return Document{}, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedFormat, filepath.Base(path))
	}
	return Document{Path: abs, Source: filepath.Base(abs), Text: string(data), Size: int64(len(data))}, nil
}

// Load returns every supported document under cfg.Root that passes the
// include/exclude filters, in lexical path order. A Root naming a single
// file loads just that file.
func Load(cfg Config) ([]Document, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	if !info.IsDir() {
		doc, err := LoadFile(root)
		if err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !Supported(d.Name()) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if !MatchesInclude(relPath, cfg.Include) || MatchesExclude(relPath, cfg.Exclude) {
			return nil
		}

		fi, err := d.Info()
		if err != nil || fi.Size() > maxSize {
			return nil
		}

		data, err := readText(path)
		if err != nil {
			return nil
		}

		docs = append(docs, Document{
			Path:   path,
			Source: filepath.ToSlash(relPath),
			Text:   data,
			Size:   fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: traversal: %w", err)
	}

	return docs, nil
}

// IsText reports whether data looks like UTF-8 text: no NUL bytes in the
// first 512 bytes and valid UTF-8 throughout.
func IsText(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	for _, b := range head {
		if b == 0 {
			return false
		}
	}
	return utf8.Valid(data)
}

func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	if !IsText(data) {
		return "", ErrUnsupportedFormat
	}
	return string(data), nil
}
