package indexer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one loadable curriculum file with its extracted text.
type SourceFile struct {
	Path    string
	Text    string
	Subject string
}

var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
}

// IsSupportedFile reports whether the file extension can be loaded.
func IsSupportedFile(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// CollectFiles returns the loadable files under path. A file path returns
// itself; a directory is walked recursively.
func CollectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	if !info.IsDir() {
		if !IsSupportedFile(path) {
			return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
		}
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && IsSupportedFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	return files, nil
}

// LoadFile reads a file and extracts its text. The subject defaults to the
// name of the file's parent directory when not provided.
func LoadFile(path, subject string) (*SourceFile, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		text, err = loadPlainText(path)
	case ".csv":
		text, err = loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if subject == "" {
		subject = filepath.Base(filepath.Dir(path))
	}

	return &SourceFile{Path: path, Text: text, Subject: subject}, nil
}

func loadPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// loadCSV flattens rows into "header: value" lines so tabular curriculum
// material stays searchable after chunking.
func loadCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	header := records[0]
	var b strings.Builder
	for _, row := range records[1:] {
		for i, cell := range row {
			if cell == "" {
				continue
			}
			if i < len(header) {
				b.WriteString(header[i])
				b.WriteString(": ")
			}
			b.WriteString(cell)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
