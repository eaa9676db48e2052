// Package summarize turns an assembled transcript into localized Markdown
// study notes through a chat-completion model. Prompts exist in Italian and
// English; transcripts over the configured input budget are rejected rather
// than silently truncated.
package summarize
