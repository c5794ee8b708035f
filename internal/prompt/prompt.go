// Package prompt renders the language-specific instruction envelope around
// the assembled context and the student's original question.
package prompt

import (
	"fmt"
	"strings"

	"ncert-rag/internal/glossary"
)

// Envelope boundary markers. These are protocol tokens recognized by the
// generation model's instruction format, not domain data.
const (
	InstOpen  = "[INST]"
	InstClose = "[/INST]"
)

const maxGlossaryTerms = 15

// RefusalPhrase is what the model is told to say when the context cannot
// answer the question.
const RefusalPhrase = "I don't have enough information"

const englishSystemTemplate = `You are an expert NCERT textbook tutor for Grade %d %s students.

CRITICAL INSTRUCTIONS:
1. Answer in English only
2. Answer ONLY the student's specific question
3. Base your answer ONLY on the provided context
4. Do NOT include [Source X] or citations within your answer text
5. Write in clear, flowing paragraphs
6. Keep your answer suitable for Grade %d students
7. If context doesn't contain the answer, say "I don't have enough information"
8. Do NOT answer any example questions found in the context`

const hindiSystemTemplate = `आप Grade %d के छात्रों के लिए एक विशेषज्ञ NCERT %s पाठ्यपुस्तक शिक्षक हैं।

बहुत महत्वपूर्ण निर्देश:
1. उत्तर केवल हिंदी में दें (देवनागरी लिपि में)
2. अंग्रेजी शब्दों का बिल्कुल प्रयोग न करें
3. वैज्ञानिक शब्दों के लिए हिंदी पारिभाषिक शब्दों का प्रयोग करें
4. केवल दिए गए संदर्भ के आधार पर उत्तर दें
5. उत्तर में [Source] या [स्रोत] टैग न लिखें
6. सरल और स्पष्ट भाषा में लिखें
7. Grade %d के छात्रों के स्तर के अनुसार उत्तर दें
8. यदि संदर्भ में उत्तर नहीं है, तो कहें "मेरे पास पर्याप्त जानकारी नहीं है"
9. संदर्भ में दिए गए उदाहरण प्रश्नों के उत्तर न दें`

// Build renders the full instruction envelope. It is a pure function of its
// inputs: language selects the template, terms (Hindi only) adds a reference
// block of at most 15 glossary pairs.
func Build(language, contextText, query string, grade int, subject string, terms []glossary.Pair) string {
	var system, contextHeader, questionHeader, answerInstruction string

	if glossary.IsHindi(language) {
		system = fmt.Sprintf(hindiSystemTemplate, grade, subject, grade)
		if len(terms) > 0 {
			var b strings.Builder
			b.WriteString("\n\nहिंदी शब्दावली (केवल संदर्भ के लिए):\n")
			for i, term := range terms {
				if i == maxGlossaryTerms {
					break
				}
				fmt.Fprintf(&b, "• %s = %s\n", term.English, term.Hindi)
			}
			system += b.String()
		}
		contextHeader = "NCERT पाठ्यपुस्तक से संदर्भ सामग्री:"
		questionHeader = "छात्र का प्रश्न:"
		answerInstruction = "उत्तर (केवल हिंदी में, बिना किसी स्रोत उद्धरण के):"
	} else {
		system = fmt.Sprintf(englishSystemTemplate, grade, subject, grade)
		contextHeader = "Reference Material from NCERT Textbooks:"
		questionHeader = "Student's Question:"
		answerInstruction = "Answer (in English, without source citations in text):"
	}

	return fmt.Sprintf("%s %s\n\n%s\n%s\n\n%s %s\n\n%s %s",
		InstOpen, system,
		contextHeader, contextText,
		questionHeader, query,
		answerInstruction, InstClose)
}
