package search

import (
	"strings"

	"github.com/patil-aryan/lumos/internal/core"
)

// maxGraphContext caps how many facts attach to a single chunk.
const maxGraphContext = 3

// fuseGraphContext annotates vector chunks with graph facts that share
// at least one query token. Chunks are never reordered, added or
// dropped; a chunk with no matching facts passes through unmodified.
// Matching facts keep the graph engine's order.
func fuseGraphContext(queryText string, chunks []core.ChunkResult, facts []core.Fact) []core.ChunkResult {
	if len(chunks) == 0 || len(facts) == 0 {
		return chunks
	}

	tokens := queryTokens(queryText)
	matched := matchingFacts(tokens, facts)
	if len(matched) == 0 {
		return chunks
	}

	for i := range chunks {
		chunks[i].GraphContext = matched
	}
	return chunks
}

// queryTokens lowercases the query and splits it on whitespace.
func queryTokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// matchingFacts returns up to maxGraphContext fact strings whose text
// contains any query token, case-insensitively, preserving input order.
func matchingFacts(tokens []string, facts []core.Fact) []string {
	if len(tokens) == 0 {
		return nil
	}

	var matched []string
	for _, fact := range facts {
		lowered := strings.ToLower(fact.Fact)
		for _, token := range tokens {
			if strings.Contains(lowered, token) {
				matched = append(matched, fact.Fact)
				break
			}
		}
		if len(matched) == maxGraphContext {
			break
		}
	}
	return matched
}
