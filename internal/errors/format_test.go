package errors

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForCLI(t *testing.T) {
	assert.Empty(t, FormatForCLI(nil))

	err := New(ErrCodeFileNotFound, "corpus file missing", nil).
		WithSuggestion("Check the --input path")
	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: corpus file missing")
	assert.Contains(t, out, "Hint: Check the --input path")
	assert.Contains(t, out, "Code: ERR_201_FILE_NOT_FOUND")
}

func TestFormatForCLI_WrapsPlainErrors(t *testing.T) {
	out := FormatForCLI(errors.New("something broke"))
	assert.Contains(t, out, "something broke")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatJSON(t *testing.T) {
	err := New(ErrCodeStoreFailed, "insert failed", errors.New("db locked")).
		WithDetail("table", "results")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ErrCodeStoreFailed, decoded["code"])
	assert.Equal(t, "insert failed", decoded["message"])
	assert.Equal(t, "IO", decoded["category"])
	assert.Equal(t, "db locked", decoded["cause"])
}

func TestFormatForLog(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))

	plain := FormatForLog(errors.New("plain"))
	assert.Equal(t, "plain", plain["error"])

	structured := FormatForLog(New(ErrCodeSearchFailed, "search failed", nil).
		WithDetail("query", "test"))
	assert.Equal(t, ErrCodeSearchFailed, structured["error_code"])
	assert.Equal(t, "WARNING", structured["severity"])
	assert.Equal(t, "test", structured["detail_query"])
}
