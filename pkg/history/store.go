package history

import (
	"bufio"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one completed generation.
type Record struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider"`
	Capability string    `json:"capability"`
	Prompt     string    `json:"prompt"`
	ResultURL  string    `json:"result_url,omitempty"`
	ResultPath string    `json:"result_path,omitempty"`
	ResultText string    `json:"result_text,omitempty"`
	TookMs     int64     `json:"took_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store keeps generation history as one JSON-lines file per day.
type Store struct {
	Dir string
}

// NewStore creates the store, making the directory if needed.
func NewStore(dir string) *Store {
	os.MkdirAll(dir, 0755)
	return &Store{Dir: dir}
}

func (s *Store) fileFor(t time.Time) string {
	return filepath.Join(s.Dir, t.Format("2006-01-02")+".jsonl")
}

// Append writes the record to its day's log, filling in the ID and timestamp
// when missing. The stored record is returned.
func (s *Store) Append(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}

	f, err := os.OpenFile(s.fileFor(rec.CreatedAt), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return rec, err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return rec, err
	}
	return rec, nil
}

// Recent returns up to limit records from the last days days, newest first.
// A limit of 0 means no cap.
func (s *Store) Recent(days, limit int) ([]Record, error) {
	var records []Record
	today := time.Now()

	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -i)
		day, err := readDay(s.fileFor(date))
		if err != nil {
			return nil, err
		}
		for j := len(day) - 1; j >= 0; j-- {
			records = append(records, day[j])
			if limit > 0 && len(records) >= limit {
				return records, nil
			}
		}
	}
	return records, nil
}

func readDay(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Skipping corrupt history line in %s: %v", path, err)
			continue
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}
