package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ncert-rag/internal/glossary"
	"ncert-rag/internal/models"
)

func TestCleanStripsSourceTags(t *testing.T) {
	in := "Plants make food. [Source 1] They use sunlight. [Source 2: Chapter 1]"
	out := Clean(in, models.LanguageEnglish, nil)
	assert.Equal(t, "Plants make food. They use sunlight.", out)
}

func TestCleanStripsHindiSourceTags(t *testing.T) {
	in := "पौधे भोजन बनाते हैं। [स्रोत 1] [संदर्भ 2]"
	out := Clean(in, models.LanguageHindi, nil)
	assert.Equal(t, "पौधे भोजन बनाते हैं।", out)
}

func TestCleanStripsPageTags(t *testing.T) {
	in := "See the diagram. [Page: 42] It shows reflection. [पृष्ठ 7]"
	out := Clean(in, models.LanguageEnglish, nil)
	assert.Equal(t, "See the diagram. It shows reflection.", out)
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	out := Clean("Plants   make\n\nfood.", models.LanguageEnglish, nil)
	assert.Equal(t, "Plants make food.", out)
}

func TestCleanEnglishAnswerNeverSubstituted(t *testing.T) {
	in := "Photosynthesis is the process by which plants make their food using sunlight."
	assert.Equal(t, in, Clean(in, models.LanguageEnglish, glossary.ResponseTerms()))
}

func TestCleanHindiLeakageAtThresholdPassesThrough(t *testing.T) {
	// Exactly 5 runs of 4+ Latin letters is within tolerance.
	in := "पौधे photosynthesis process energy water sunlight द्वारा"
	out := Clean(in, models.LanguageHindi, glossary.ResponseTerms())
	assert.Equal(t, in, out)
}

func TestCleanHindiLeakageAboveThresholdSubstitutes(t *testing.T) {
	in := "पौधे photosynthesis process energy water sunlight plants द्वारा"
	out := Clean(in, models.LanguageHindi, glossary.ResponseTerms())

	assert.NotContains(t, out, "photosynthesis")
	assert.NotContains(t, out, "sunlight")
	assert.NotContains(t, out, "plants")
	assert.Contains(t, out, "प्रकाश संश्लेषण")
	assert.Contains(t, out, "सूर्य का प्रकाश")
	assert.Contains(t, out, "पौधे")
}

func TestCleanHindiLeakageWithoutGlossaryOnlyLogs(t *testing.T) {
	in := "पौधे photosynthesis process energy water sunlight plants द्वारा"
	out := Clean(in, models.LanguageHindi, nil)
	assert.Equal(t, in, out)
}

func TestCleanSubstitutionIsWholeWord(t *testing.T) {
	// "light" must not be rewritten inside "lightning".
	in := "पौधे lightning process energy water sunlight plants द्वारा"
	out := Clean(in, models.LanguageHindi, glossary.ResponseTerms())
	assert.Contains(t, out, "lightning")
}

func TestCleanSubstitutionIsCaseInsensitive(t *testing.T) {
	in := "पौधे Photosynthesis process energy water sunlight plants द्वारा"
	out := Clean(in, models.LanguageHindi, glossary.ResponseTerms())
	assert.NotContains(t, out, "Photosynthesis")
	assert.Contains(t, out, "प्रकाश संश्लेषण")
}

func TestCleanStripsLatinParentheticalsAfterSubstitution(t *testing.T) {
	in := "हरितलवक (chloroplast) photosynthesis process energy water sunlight plants में होता है"
	out := Clean(in, models.LanguageHindi, glossary.ResponseTerms())
	assert.NotContains(t, out, "chloroplast")
	assert.NotContains(t, out, "(")
}
