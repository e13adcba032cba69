package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchResult_Record(t *testing.T) {
	result := NewBatchResult("/lib", 4)
	assert.NotEqual(t, uuid.Nil, result.RunID)

	result.Record(FileOutcome{Path: "a.txt", Status: StatusClassified, Category: "01-玄幻", EncodingFixed: true})
	result.Record(FileOutcome{Path: "b.txt", Status: StatusClassified, Category: "01-玄幻"})
	result.Record(FileOutcome{Path: "c.txt", Status: StatusSecondary})
	result.Record(FileOutcome{Path: "d.txt", Status: StatusFailed, Error: "unreadable"})

	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 2, result.Classified)
	assert.Equal(t, 1, result.SecondaryCheck)
	assert.Equal(t, 0, result.Pending)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.EncodingFixed)
	assert.Equal(t, 2, result.PerCategory["01-玄幻"])
	require.Len(t, result.Outcomes, 4)
	assert.Equal(t, "d.txt", result.Outcomes[3].Path)
}

func TestFileOutcome_JSONMarshaling(t *testing.T) {
	outcome := FileOutcome{
		Path:       "/lib/00-pending/星海.txt",
		Status:     StatusSecondary,
		Candidates: []ScoreEntry{{Category: "10-科幻", Score: 12}},
		Reason:     "10-科幻(12) vs 01-玄幻(10)",
		Encoding:   "gbk",
		Confidence: 0.8,
		TopScore:   12,
	}

	jsonBytes, err := json.MarshalIndent(outcome, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"status": "secondary_check"`)
	assert.Contains(t, string(jsonBytes), `"encoding": "gbk"`)
	assert.Contains(t, string(jsonBytes), `"encoding_fixed": false`)
	assert.NotContains(t, string(jsonBytes), `"destination"`)
}
