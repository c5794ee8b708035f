// Package glossary holds the fixed bilingual term tables and the query
// canonicalizer. Canonicalization rewrites a retrieval-only copy of the
// query; the original text is always preserved for generation.
package glossary

import (
	"strings"
	"unicode"

	"ncert-rag/internal/models"
)

// Pair maps an English lexeme to its Hindi equivalent.
type Pair struct {
	English string
	Hindi   string
}

// retrievalTerms translate Hindi science terms to English before embedding,
// because the corpus is indexed in English. Order matters: substitution is
// sequential in this order, not longest-match-first.
var retrievalTerms = []Pair{
	{"photosynthesis", "प्रकाश संश्लेषण"},
	{"light", "प्रकाश"},
	{"synthesis", "संश्लेषण"},
	{"plants", "पौधे"},
	{"leaves", "पत्ते"},
	{"green", "हरा"},
	{"food", "भोजन"},
	{"carbon dioxide", "कार्बन डाइऑक्साइड"},
	{"water", "पानी"},
	{"sunlight", "सूर्य का प्रकाश"},
	{"oxygen", "ऑक्सीजन"},
	{"atmosphere", "वायुमंडल"},
	{"reflection", "परावर्तन"},
	{"shadow", "छाया"},
	{"transparent", "पारदर्शी"},
	{"opaque", "अपारदर्शी"},
	{"translucent", "अर्धपारदर्शी"},
}

// responseTerms translate English terms leaking into a Hindi answer. The
// prompt builder shows the first 15 as a reference block; the sanitizer
// re-sorts them longest-first before substituting.
var responseTerms = []Pair{
	{"photosynthesis", "प्रकाश संश्लेषण"},
	{"light", "प्रकाश"},
	{"plants", "पौधे"},
	{"leaves", "पत्ते"},
	{"green", "हरा"},
	{"food", "भोजन"},
	{"carbon dioxide", "कार्बन डाइऑक्साइड"},
	{"water", "पानी"},
	{"sunlight", "सूर्य का प्रकाश"},
	{"oxygen", "ऑक्सीजन"},
	{"atmosphere", "वायुमंडल"},
	{"reflection", "परावर्तन"},
	{"shadow", "छाया"},
	{"transparent", "पारदर्शी"},
	{"opaque", "अपारदर्शी"},
	{"translucent", "अर्धपारदर्शी"},
	{"process", "प्रक्रिया"},
	{"energy", "ऊर्जा"},
	{"chlorophyll", "हरितलवक"},
	{"glucose", "ग्लूकोज"},
	{"starch", "स्टार्च"},
	{"production", "उत्पादन"},
	{"results", "परिणाम"},
	{"presence", "उपस्थिति"},
	{"using", "का उपयोग करके"},
	{"make", "बनाते हैं"},
	{"their", "अपना"},
	{"by which", "जिसके द्वारा"},
	{"is a", "एक"},
	{"and", "तथा"},
	{"in the", "में"},
	{"of", "का"},
	{"sun", "सूर्य"},
}

// ResponseTerms returns the English→Hindi table in insertion order.
func ResponseTerms() []Pair {
	terms := make([]Pair, len(responseTerms))
	copy(terms, responseTerms)
	return terms
}

// IsHindi reports whether a response-language value selects the Hindi variant.
func IsHindi(language string) bool {
	switch strings.ToLower(language) {
	case models.LanguageHindi, "hi":
		return true
	}
	return false
}

// DetectLanguage classifies a query by script. Any rune outside basic ASCII
// is taken as Hindi; this mirrors how the corpus was tagged and is used for
// logging and for deciding whether to canonicalize.
func DetectLanguage(query string) string {
	if isASCII(query) {
		return models.LanguageEnglish
	}
	return models.LanguageHindi
}

// CanonicalizeQuery rewrites Hindi terms to their English lexemes so the
// embedding matches the English corpus. ASCII-only input passes through
// unchanged, as do unmapped terms. Never fails.
func CanonicalizeQuery(query string) string {
	if isASCII(query) {
		return query
	}
	canonical := query
	for _, term := range retrievalTerms {
		if strings.Contains(query, term.Hindi) {
			canonical = strings.ReplaceAll(canonical, term.Hindi, term.English)
		}
	}
	return canonical
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
