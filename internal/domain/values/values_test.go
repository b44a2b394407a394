package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewBuildID(t *testing.T) {
	id1 := NewBuildID()
	id2 := NewBuildID()

	assert.False(t, id1.IsZero(), "new ID should not be zero")
	assert.False(t, id1.Equals(id2), "two new IDs should be different")
}

func Test_ParseBuildID(t *testing.T) {
	valid := "123e4567-e89b-12d3-a456-426614174000"

	id, err := ParseBuildID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, id.String())

	for _, bad := range []string{"", "invalid", "123"} {
		_, err := ParseBuildID(bad)
		assert.Error(t, err, bad)
	}
}

func Test_BuildID_JSON(t *testing.T) {
	id := NewBuildID()

	data, err := json.Marshal(struct {
		ID BuildID `json:"id"`
	}{ID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(data))
}

func Test_NewCountryCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "DE", "DE", false},
		{"lower case", "de", "DE", false},
		{"trims whitespace", "  fr ", "FR", false},
		{"empty", "", "", true},
		{"too long", "DEU", "", true},
		{"digits", "D1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := NewCountryCode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code.String())
		})
	}
}

func Test_ParseCountryCodes_Deduplicates(t *testing.T) {
	codes, err := ParseCountryCodes([]string{"DE", "fr", "de"})
	require.NoError(t, err)

	require.Len(t, codes, 2)
	assert.Equal(t, "DE", codes[0].String())
	assert.Equal(t, "FR", codes[1].String())

	_, err = ParseCountryCodes([]string{"DE", "Germany"})
	assert.Error(t, err)
}

func Test_EntryState(t *testing.T) {
	assert.True(t, EntryReady.IsReady())
	assert.False(t, EntryReady.IsFailure())
	assert.True(t, EntryLoadFailed.IsFailure())
	assert.True(t, EntryValidationFailed.IsFailure())
	assert.False(t, EntryUnloaded.IsFailure())

	assert.NoError(t, EntryUnloaded.Validate())
	assert.Error(t, EntryState("bogus").Validate())
}
