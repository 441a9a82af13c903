package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_English(t *testing.T) {
	assert.Equal(t, "en", Detect("The government announced a new policy today"))
}

func TestDetect_Hindi(t *testing.T) {
	assert.Equal(t, "hi", Detect("सरकार ने आज एक नई नीति की घोषणा की"))
}

func TestDetect_MixedScriptLeansDevanagari(t *testing.T) {
	// A modest share of Devanagari is enough to call it Hindi
	assert.Equal(t, "hi", Detect("breaking: सरकार ने घोषणा की about the new policy"))
}

func TestDetect_RomanizedHindi(t *testing.T) {
	// A marker word buried in text dominated by neither script
	assert.Equal(t, "hi", Detect("!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!! hai"))
}

func TestDetect_Empty(t *testing.T) {
	assert.Equal(t, "und", Detect(""))
	assert.Equal(t, "und", Detect("   \n "))
}

func TestDetect_NonLetterFallsBackToEnglish(t *testing.T) {
	assert.Equal(t, "en", Detect("1234567890 !!!"))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("en"))
	assert.True(t, IsSupported("hi"))
	assert.False(t, IsSupported("und"))
	assert.False(t, IsSupported("fr"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "English", Name("en"))
	assert.Equal(t, "Hindi", Name("hi"))
	assert.Equal(t, "Unknown", Name("und"))
}
