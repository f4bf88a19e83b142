// Package models defines client-side data models of the cloudbox client.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// FileRecord is an immutable snapshot of one stored file as reported by the
// listing endpoint. The client never edits a record; it re-fetches the list.
type FileRecord struct {
	ID              int64     `json:"id"`
	FileName        string    `json:"fileName"`
	FileSize        int64     `json:"fileSize"`
	UploadTimestamp Timestamp `json:"uploadTimestamp"`
}

// Collection is the ordered list of a user's files, in server order.
type Collection []FileRecord

// Find returns the record with the given id.
func (c Collection) Find(id int64) (FileRecord, bool) {
	for _, r := range c {
		if r.ID == id {
			return r, true
		}
	}
	return FileRecord{}, false
}

// FindByName returns the first record with the given file name.
func (c Collection) FindByName(name string) (FileRecord, bool) {
	for _, r := range c {
		if r.FileName == name {
			return r, true
		}
	}
	return FileRecord{}, false
}

// TotalSize sums FileSize over the collection.
func (c Collection) TotalSize() int64 {
	var total int64
	for _, r := range c {
		total += r.FileSize
	}
	return total
}

// timestampLayouts are tried in order. The server serializes a zone-less
// local date-time; those values are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp accepts RFC 3339 and zone-less ISO-8601 date-times.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
