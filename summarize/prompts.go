package summarize

import "fmt"

// Supported output languages.
const (
	LangItalian = "it"
	LangEnglish = "en"
)

// academic system prompts keep the model anchored to the transcript; the
// model must not pad the notes with invented material.
const (
	systemIT = "Sei un assistente accademico. Sii fedele alla fonte e non inventare informazioni. " +
		"Produci riassunti in italiano, strutturati in Markdown."
	systemEN = "You are an academic assistant. Be faithful to the source and do not invent facts. " +
		"Produce summaries in English, structured in Markdown."
)

const (
	userTemplateIT = "In base alla TRASCRIZIONE qui sotto, scrivi note di studio in Markdown con:\n" +
		"1) Un abstract di 6-8 frasi (solo prosa, niente liste).\n" +
		"2) Un riassunto corposo con titoli (#, ##, ###), esempi e formule testuali.\n" +
		"3) 10-16 punti chiave sintetici (bullet singola riga).\n" +
		"4) Un glossario dei termini tecnici (termine: definizione breve).\n" +
		"Non inventare; se un'informazione non è nella trascrizione, omettila.\n\n" +
		"TRASCRIZIONE:\n%s"
	userTemplateEN = "Using the TRANSCRIPT below, write Markdown study notes with:\n" +
		"1) An abstract of 6-8 sentences (prose only, no bullet lists).\n" +
		"2) A substantial summary with headings (#, ##, ###), examples, and textual formulas.\n" +
		"3) 10-16 concise key points (single-line bullets).\n" +
		"4) A glossary of technical terms (term: short definition).\n" +
		"Do not invent facts; if information is not in the transcript, omit it.\n\n" +
		"TRANSCRIPT:\n%s"
)

// promptsFor returns the system and user prompt for a language. Unknown
// languages fall back to English.
func promptsFor(lang, transcript string) (system, user string) {
	if lang == LangItalian {
		return systemIT, fmt.Sprintf(userTemplateIT, transcript)
	}
	return systemEN, fmt.Sprintf(userTemplateEN, transcript)
}
