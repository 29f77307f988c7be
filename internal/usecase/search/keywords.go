package search

import (
	"strings"
	"unicode"
)

// stopwords are dropped from natural-language queries before the secondary
// keyword retrieval pass. Question words, articles, auxiliaries and common
// query fillers dilute the semantic signal of embeddings.
var stopwords = map[string]struct{}{
	// Question words
	"what": {}, "which": {}, "who": {}, "whom": {}, "where": {},
	"when": {}, "why": {}, "how": {},
	// Prepositions and articles
	"to": {}, "of": {}, "in": {}, "for": {}, "on": {}, "with": {},
	"at": {}, "by": {}, "from": {}, "as": {}, "into": {}, "about": {},
	"a": {}, "an": {}, "the": {},
	// Conjunctions
	"and": {}, "or": {}, "but": {}, "if": {}, "then": {},
	// Pronouns
	"this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"my": {}, "your": {}, "his": {}, "her": {}, "its": {}, "our": {}, "their": {},
	// Common verbs
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "may": {}, "might": {}, "must": {},
	// Fillers
	"some": {}, "any": {}, "all": {}, "both": {}, "each": {}, "every": {},
	"other": {}, "another": {}, "such": {}, "only": {}, "own": {}, "same": {},
	"so": {}, "than": {}, "too": {}, "very": {}, "just": {}, "also": {},
	// Query-specific
	"include": {}, "includes": {}, "including": {},
	"contain": {}, "contains": {}, "show": {}, "shows": {},
	"find": {}, "search": {}, "look": {}, "looking": {},
	"tell": {}, "explain": {}, "describe": {}, "give": {}, "get": {}, "know": {},
	"somehow": {}, "something": {}, "anything": {}, "everything": {},
	"please": {}, "help": {}, "need": {}, "want": {},
}

// ExtractKeywords strips stopwords from a natural-language query while
// preserving proper nouns. Tokens containing an uppercase letter always
// survive, so a user-typed name like "Adam Stewart" is never filtered out.
// If nothing survives, the original query is returned unchanged: the
// extractor never produces an empty search string.
func ExtractKeywords(q string) string {
	tokens := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-' && r != '\''
	})

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if hasUpper(tok) {
			kept = append(kept, tok)
			continue
		}
		if _, stop := stopwords[tok]; !stop {
			kept = append(kept, tok)
		}
	}

	if len(kept) == 0 {
		return q
	}
	return strings.Join(kept, " ")
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
