package common

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StopWords are dropped from questions before keyword search and matching.
var StopWords = map[string]struct{}{
	"什么": {}, "如何": {}, "为什么": {}, "哪里": {}, "谁": {}, "是": {}, "的": {}, "了": {}, "在": {}, "和": {}, "与": {},
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "and": {}, "or": {}, "with": {}, "by": {}, "from": {},
	"what": {}, "who": {}, "whom": {}, "which": {}, "where": {}, "when": {}, "why": {}, "how": {},
	"do": {}, "does": {}, "did": {}, "can": {}, "about": {}, "tell": {}, "me": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

var questionReplacer = strings.NewReplacer("？", "", "?", "", "，", " ")

// ExtractKeywords splits a question into at most limit search keywords.
// Tokens of a single rune and stop words are discarded. A limit <= 0 keeps all.
func ExtractKeywords(question string, limit int) []string {
	words := strings.Fields(questionReplacer.Replace(question))
	keywords := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimFunc(w, unicode.IsPunct)
		if utf8.RuneCountInString(w) <= 1 {
			continue
		}
		if _, stop := StopWords[strings.ToLower(w)]; stop {
			continue
		}
		keywords = append(keywords, w)
		if limit > 0 && len(keywords) == limit {
			break
		}
	}
	return keywords
}
