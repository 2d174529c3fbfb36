package graph

import (
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/patil-aryan/lumos/internal/core"
)

// Facts are stored on RELATES_TO edges indexed by the edge_name_and_fact
// fulltext index; valid_at/invalid_at carry the bitemporal window.
const searchFactsQuery = `
CALL db.index.fulltext.queryRelationships("edge_name_and_fact", $query, {limit: $limit})
YIELD relationship, score
RETURN relationship.fact AS fact,
       relationship.uuid AS uuid,
       relationship.valid_at AS valid_at,
       relationship.invalid_at AS invalid_at,
       startNode(relationship).uuid AS source_node_uuid
ORDER BY score DESC`

const addEpisodeQuery = `
MERGE (e:Episodic {uuid: $uuid})
SET e.content = $content,
    e.source_description = $source,
    e.valid_at = $timestamp,
    e.created_at = datetime()`

func factFromRecord(record *db.Record) core.Fact {
	return core.Fact{
		Fact:           asString(record, "fact"),
		UUID:           asString(record, "uuid"),
		ValidAt:        asTimePtr(record, "valid_at"),
		InvalidAt:      asTimePtr(record, "invalid_at"),
		SourceNodeUUID: asString(record, "source_node_uuid"),
	}
}

func asString(record *db.Record, key string) string {
	value, found := record.Get(key)
	if !found || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asTimePtr(record *db.Record, key string) *time.Time {
	value, found := record.Get(key)
	if !found || value == nil {
		return nil
	}

	switch v := value.(type) {
	case time.Time:
		t := v.UTC()
		return &t
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// fulltextEscape neutralizes Lucene query syntax in user text so a
// query like "who? AND why!" cannot break the fulltext call.
func fulltextEscape(text string) string {
	replacer := strings.NewReplacer(
		`+`, `\+`, `-`, `\-`, `&`, `\&`, `|`, `\|`, `!`, `\!`,
		`(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`,
		`^`, `\^`, `"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`,
		`:`, `\:`, `\`, `\\`, `/`, `\/`,
	)
	return replacer.Replace(text)
}
