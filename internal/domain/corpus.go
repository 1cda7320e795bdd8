package domain

import "strings"

// NoKnowledgeText stands in for corpus text when no document yielded any text.
const NoKnowledgeText = "No reference documents are available in the knowledge folder."

// Corpus is the snapshot of every document found at build time.
type Corpus struct {
	Dir       string
	Documents []Document
	Skipped   []string
	text      string
}

// NewCorpus concatenates the text of docs in order, one trailing newline per page block.
func NewCorpus(dir string, docs []Document, skipped []string) Corpus {
	var b strings.Builder
	for _, d := range docs {
		b.WriteString(d.Text)
	}
	return Corpus{Dir: dir, Documents: docs, Skipped: skipped, text: b.String()}
}

// Empty reports whether no document contributed text.
func (c Corpus) Empty() bool { return strings.TrimSpace(c.text) == "" }

// Text returns the concatenated corpus text, or NoKnowledgeText when empty.
func (c Corpus) Text() string {
	if c.Empty() {
		return NoKnowledgeText
	}
	return c.text
}

// RawText returns the concatenated text without the sentinel substitution.
func (c Corpus) RawText() string { return c.text }
