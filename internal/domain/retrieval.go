package domain

import "strings"

// NoReferencesText is returned by retrieval when the corpus holds no text.
const NoReferencesText = "No references are available for this question."

// Strategy names the retrieval tier that produced a result.
type Strategy string

const (
	StrategySemantic   Strategy = "semantic"
	StrategyTruncation Strategy = "truncation"
	StrategySentinel   Strategy = "sentinel"
)

// RetrievalResult is the ordered reference text handed to the context assembler.
// Err records why a stronger tier was skipped, if it failed.
type RetrievalResult struct {
	Texts    []string
	Strategy Strategy
	Err      error
}

// Text joins the retrieved texts with newlines.
func (r RetrievalResult) Text() string {
	return strings.Join(r.Texts, "\n")
}
