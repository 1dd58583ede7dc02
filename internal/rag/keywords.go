package rag

import "strings"

// stopWords are tokens that carry no signal for narrowing file paths. The
// tail of the list covers the query verbs users lead with ("explain the
// config loader", "list available commands").
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "shall": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "i": {}, "you": {}, "he": {}, "she": {},
	"it": {}, "we": {}, "they": {}, "me": {}, "him": {}, "her": {}, "us": {},
	"them": {}, "my": {}, "your": {}, "his": {}, "its": {}, "our": {},
	"their": {}, "what": {}, "which": {}, "who": {}, "when": {}, "where": {},
	"why": {}, "how": {}, "all": {}, "any": {}, "both": {}, "each": {},
	"few": {}, "more": {}, "most": {}, "other": {}, "some": {}, "such": {},
	"no": {}, "nor": {}, "not": {}, "only": {}, "own": {}, "same": {},
	"so": {}, "than": {}, "too": {}, "very": {}, "just": {}, "now": {},
	"here": {}, "there": {}, "then": {}, "once": {}, "also": {},
	"explain": {}, "available": {}, "list": {}, "show": {}, "get": {},
	"find": {}, "search": {}, "query": {}, "select": {},
}

// ExtractKeywords tokenizes a question into path-narrowing keywords:
// whitespace-split, non-alphanumeric edges stripped, lowercased, tokens
// shorter than 3 characters and stop words dropped.
func ExtractKeywords(question string) []string {
	var keywords []string
	for _, token := range strings.Fields(question) {
		token = strings.TrimFunc(token, func(r rune) bool {
			return !isAlphanumeric(r)
		})
		token = strings.ToLower(token)
		if len(token) < 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// filterRelevantKeywords drops stop words and short tokens from an
// already-tokenized keyword list.
func filterRelevantKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if len(k) < 3 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(k)]; stop {
			continue
		}
		out = append(out, k)
	}
	return out
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
