package ingest

// DefaultStopwords returns a base English stoplist. Negation cues such as
// "no" and "not" are deliberately absent; they are handled by negex.
func DefaultStopwords() []string {
	return []string{
		"the", "a", "an", "is", "was", "are", "were", "be", "been", "being",
		"to", "of", "in", "for", "on", "with", "at", "by", "from", "as",
		"and", "or", "but", "so", "than", "too", "very", "just", "if", "when",
		"that", "which", "who", "whom", "this", "these", "those", "there",
		"it", "its", "has", "have", "had", "do", "does", "did", "can", "may",
		"might", "should", "would", "could", "will", "shall", "also", "into",
		"i", "we", "our", "you", "your", "me", "my", "he", "she", "they",
		"about", "above", "below", "up", "down", "over", "under", "again",
		"then", "once", "here", "all", "any", "both", "each", "other", "some",
		"such", "only", "own", "same", "per", "via",
	}
}
