package glossary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ncert-rag/internal/models"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, models.LanguageEnglish, DetectLanguage("What is photosynthesis?"))
	assert.Equal(t, models.LanguageHindi, DetectLanguage("प्रकाश संश्लेषण क्या है?"))
	assert.Equal(t, models.LanguageHindi, DetectLanguage("What is प्रकाश?"))
	assert.Equal(t, models.LanguageEnglish, DetectLanguage(""))
}

func TestIsHindi(t *testing.T) {
	assert.True(t, IsHindi("hindi"))
	assert.True(t, IsHindi("Hindi"))
	assert.True(t, IsHindi("hi"))
	assert.False(t, IsHindi("english"))
	assert.False(t, IsHindi(""))
	assert.False(t, IsHindi("hin"))
}

func TestCanonicalizeQueryPassesASCIIThrough(t *testing.T) {
	query := "Why do plants need sunlight?"
	assert.Equal(t, query, CanonicalizeQuery(query))
}

func TestCanonicalizeQueryTranslatesKnownTerms(t *testing.T) {
	got := CanonicalizeQuery("पौधे अपना भोजन कैसे बनाते हैं?")
	assert.Contains(t, got, "plants")
	assert.Contains(t, got, "food")
	assert.NotContains(t, got, "पौधे")
	assert.NotContains(t, got, "भोजन")
}

func TestCanonicalizeQueryMultiWordTermWinsOverItsParts(t *testing.T) {
	// "प्रकाश संश्लेषण" sits before "प्रकाश" and "संश्लेषण" in the table, so
	// the compound is rewritten as one lexeme.
	got := CanonicalizeQuery("प्रकाश संश्लेषण क्या है?")
	assert.Contains(t, got, "photosynthesis")
	assert.NotContains(t, got, "light synthesis")
}

func TestCanonicalizeQueryKeepsUnmappedHindi(t *testing.T) {
	got := CanonicalizeQuery("पानी और मिट्टी")
	assert.Contains(t, got, "water")
	assert.Contains(t, got, "मिट्टी")
}

func TestResponseTermsReturnsACopy(t *testing.T) {
	a := ResponseTerms()
	assert.NotEmpty(t, a)
	a[0].English = "mutated"
	b := ResponseTerms()
	assert.NotEqual(t, "mutated", b[0].English)
}
