package trends

// stopWords is the fixed exclusion set for keyword extraction. It is never
// mutated, so concurrent scoring calls can share it freely.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
		"for", "of", "with", "by", "from", "up", "about", "into",
		"through", "during", "before", "after", "over", "under",
		"is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did", "done",
		"will", "would", "could", "should", "shall", "may", "might",
		"must", "can", "cant", "dont", "wont", "didnt", "doesnt",
		"this", "that", "these", "those", "there", "here",
		"i", "you", "he", "she", "it", "we", "they", "them", "their",
		"your", "yours", "what", "which", "who", "whom", "whose",
		"when", "where", "why", "how", "all", "each", "every", "both",
		"few", "more", "most", "other", "some", "such", "than", "then",
		"just", "like", "very", "really", "only", "also", "even",
		"still", "much", "many", "same", "so", "too", "not", "no",
		"get", "got", "make", "made", "know", "think", "want", "going",
		"anyone", "everyone", "something", "anything", "thing", "things",
	} {
		stopWords[w] = struct{}{}
	}
}
