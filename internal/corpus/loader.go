// Package corpus loads source documents, chunks them, and indexes the
// chunks into the vector and keyword stores. It also provides the
// hybrid searcher the retrieval pipeline runs against.
package corpus

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/corpusgap/corpusgap/internal/errors"
	"github.com/corpusgap/corpusgap/internal/store"
)

// DefaultMaxFileSize caps individual source files at 64MB.
const DefaultMaxFileSize = 64 << 20

// textExtensions are the file types picked up by directory loads.
var textExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Loader reads corpus documents from disk. Supported inputs are a
// directory of markdown/text files, a CSV file with title and content
// columns, or a JSON array of documents.
type Loader struct {
	// MaxFileSize rejects oversized source files (bytes).
	MaxFileSize int64
}

// NewLoader creates a loader with default limits.
func NewLoader() *Loader {
	return &Loader{MaxFileSize: DefaultMaxFileSize}
}

// jsonDocument is the accepted JSON document shape.
type jsonDocument struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Load reads documents from path, dispatching on its type and
// extension.
func (l *Loader) Load(path string) ([]*store.Document, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound,
			fmt.Sprintf("corpus path not found: %s", path), err)
	}
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("cannot stat %s", path), err)
	}

	if info.IsDir() {
		return l.loadDirectory(path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.loadCSV(path)
	case ".json":
		return l.loadJSON(path)
	case ".md", ".markdown", ".txt":
		doc, err := l.loadTextFile(path, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		return []*store.Document{doc}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported corpus format: %s", filepath.Ext(path)), nil).
			WithSuggestion("use a directory of .md/.txt files, a .csv, or a .json file")
	}
}

// loadDirectory walks a directory tree and loads every text file.
func (l *Loader) loadDirectory(root string) ([]*store.Document, error) {
	var docs []*store.Document

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories like .git.
			if d.Name() != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		doc, loadErr := l.loadTextFile(path, rel)
		if loadErr != nil {
			return loadErr
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		if _, ok := err.(*errors.CorpusError); ok {
			return nil, err
		}
		return nil, errors.IOError(fmt.Sprintf("failed to walk %s", root), err)
	}

	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus,
			fmt.Sprintf("no corpus documents found under %s", root), nil)
	}
	return docs, nil
}

// loadTextFile loads one markdown or plain-text file as a document.
// The title is the first markdown heading, falling back to the file
// name without extension.
func (l *Loader) loadTextFile(path, source string) (*store.Document, error) {
	if err := l.checkSize(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", path), err)
	}

	content := strings.TrimSpace(string(data))
	title := extractTitle(content)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	return &store.Document{
		ID:      documentID(source),
		Title:   title,
		Source:  source,
		Content: content,
	}, nil
}

// loadCSV loads documents from a CSV file. The header row must name a
// content column; title and source columns are optional.
func (l *Loader) loadCSV(path string) ([]*store.Document, error) {
	if err := l.checkSize(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("invalid CSV in %s", path), err)
	}
	if len(records) < 2 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus,
			fmt.Sprintf("no document rows in %s", path), nil)
	}

	// Resolve column indexes from the header.
	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	contentIdx, ok := col["content"]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("CSV %s has no content column", path), nil).
			WithSuggestion("add a header row with a content column")
	}
	titleIdx, hasTitle := col["title"]
	sourceIdx, hasSource := col["source"]

	docs := make([]*store.Document, 0, len(records)-1)
	for i, record := range records[1:] {
		if contentIdx >= len(record) {
			continue
		}
		content := strings.TrimSpace(record[contentIdx])
		if content == "" {
			continue
		}

		title := ""
		if hasTitle && titleIdx < len(record) {
			title = strings.TrimSpace(record[titleIdx])
		}
		source := fmt.Sprintf("%s#%d", filepath.Base(path), i+1)
		if hasSource && sourceIdx < len(record) && strings.TrimSpace(record[sourceIdx]) != "" {
			source = strings.TrimSpace(record[sourceIdx])
		}
		if title == "" {
			title = source
		}

		docs = append(docs, &store.Document{
			ID:      documentID(source),
			Title:   title,
			Source:  source,
			Content: content,
		})
	}

	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus,
			fmt.Sprintf("no usable rows in %s", path), nil)
	}
	return docs, nil
}

// loadJSON loads documents from a JSON array.
func (l *Loader) loadJSON(path string) ([]*store.Document, error) {
	if err := l.checkSize(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to read %s", path), err)
	}

	var raw []jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("invalid JSON in %s", path), err).
			WithSuggestion("expected an array of {title, content} objects")
	}

	docs := make([]*store.Document, 0, len(raw))
	for i, d := range raw {
		content := strings.TrimSpace(d.Content)
		if content == "" {
			continue
		}

		source := d.Source
		if source == "" {
			source = fmt.Sprintf("%s#%d", filepath.Base(path), i+1)
		}
		id := d.ID
		if id == "" {
			id = documentID(source)
		}
		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = source
		}

		docs = append(docs, &store.Document{
			ID:      id,
			Title:   title,
			Source:  source,
			Content: content,
		})
	}

	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCorpus,
			fmt.Sprintf("no usable documents in %s", path), nil)
	}
	return docs, nil
}

func (l *Loader) checkSize(path string) error {
	limit := l.MaxFileSize
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.IOError(fmt.Sprintf("cannot stat %s", path), err)
	}
	if info.Size() > limit {
		return errors.New(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is %d bytes, limit is %d", path, info.Size(), limit), nil)
	}
	return nil
}

// extractTitle returns the first markdown heading in content, if any.
func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
		if trimmed != "" {
			return ""
		}
	}
	return ""
}

// documentID derives a stable ID from the document source.
func documentID(source string) string {
	hash := sha256.Sum256([]byte(source))
	return hex.EncodeToString(hash[:])[:16]
}
