package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRecord_DecodeServerPayload(t *testing.T) {
	payload := `[
		{"id": 7, "fileName": "a.txt", "fileSize": 12, "uploadTimestamp": "2024-05-01T10:15:30.123456"},
		{"id": 3, "fileName": "b.png", "fileSize": 2048, "uploadTimestamp": "2024-05-02T08:00:00Z"}
	]`

	var c Collection
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	require.Len(t, c, 2)

	assert.Equal(t, int64(7), c[0].ID, "server order is preserved")
	assert.Equal(t, "a.txt", c[0].FileName)
	assert.Equal(t, int64(12), c[0].FileSize)
	assert.Equal(t,
		time.Date(2024, 5, 1, 10, 15, 30, 123456000, time.UTC),
		c[0].UploadTimestamp.Time)

	assert.Equal(t, time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC), c[1].UploadTimestamp.Time)
}

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "zone-less seconds", input: `"2024-01-02T03:04:05"`, want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "rfc3339 offset", input: `"2024-01-02T03:04:05+02:00"`, want: time.Date(2024, 1, 2, 1, 4, 5, 0, time.UTC)},
		{name: "space separated", input: `"2024-01-02 03:04:05"`, want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{name: "null", input: `null`},
		{name: "empty string", input: `""`},
		{name: "number", input: `1714558530`, wantErr: true},
		{name: "garbage", input: `"yesterday"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.input), &ts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(ts.Time), "got %v want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestamp_MarshalRoundTripsThroughParse(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01T10:00:00Z"`, string(b))

	b, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestCollection_Helpers(t *testing.T) {
	c := Collection{
		{ID: 1, FileName: "a", FileSize: 10},
		{ID: 2, FileName: "b", FileSize: 20},
	}

	r, ok := c.Find(2)
	require.True(t, ok)
	assert.Equal(t, "b", r.FileName)

	_, ok = c.Find(3)
	assert.False(t, ok)

	r, ok = c.FindByName("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), r.ID)

	assert.Equal(t, int64(30), c.TotalSize())
	assert.Zero(t, Collection(nil).TotalSize())
}
