package dataset

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Snapshot is the item pool handed over by the ingestion pipeline plus its
// content fingerprint. The fingerprint changes whenever the pool's content
// changes, which invalidates every cached base order keyed on it.
type Snapshot struct {
	Items []Item
	Hash  string
}

// ItemByID returns the item with the given id, or nil.
func (s *Snapshot) ItemByID(id string) *Item {
	for i := range s.Items {
		if s.Items[i].RequestID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// Load reads a JSONL snapshot file. Blank lines are skipped; every other
// line must be one JSON request record. The dataset hash is computed over
// the trimmed raw lines so formatting-only edits do not force queue
// rebuilds, while any content change does.
func Load(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	digest := sha256.New()
	var items []Item
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("parse dataset line %d: %w", lineNo, err)
		}
		if item.RequestID == "" {
			return nil, fmt.Errorf("dataset line %d: missing request_id", lineNo)
		}
		if _, dup := seen[item.RequestID]; dup {
			return nil, fmt.Errorf("dataset line %d: duplicate request_id %q", lineNo, item.RequestID)
		}
		seen[item.RequestID] = struct{}{}

		digest.Write([]byte(line))
		digest.Write([]byte{'\n'})
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	return &Snapshot{
		Items: items,
		Hash:  hex.EncodeToString(digest.Sum(nil)),
	}, nil
}
