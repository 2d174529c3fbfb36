package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/patil-aryan/lumos/internal/config"
	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/pkg/log"
)

const searchLimit = 10

// Client implements core.GraphSearchEngine against a Neo4j knowledge
// graph whose facts live on RELATES_TO relationships with a bitemporal
// validity window. It is constructed once at startup via Open and
// injected wherever the engine is needed.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// Open connects to the graph database and verifies connectivity.
func Open(ctx context.Context, cfg *config.GraphConfig) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify neo4j connectivity: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}

	log.FromCtx(ctx).Info().Str("uri", cfg.URI).Str("database", database).Msg("graph client connected")

	return &Client{driver: driver, database: database}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Search runs a fulltext query over fact edges and returns the hits in
// engine order. Temporal ordering is not guaranteed here; callers that
// need it sort client-side.
func (c *Client) Search(ctx context.Context, text string) ([]core.Fact, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, searchFactsQuery, map[string]any{
			"query": fulltextEscape(text),
			"limit": searchLimit,
		})
		if err != nil {
			return nil, err
		}

		var facts []core.Fact
		for res.Next(ctx) {
			facts = append(facts, factFromRecord(res.Record()))
		}
		return facts, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("graph search failed: %w", err)
	}

	return result.([]core.Fact), nil
}

// AddEpisode writes one episode node. This is the ingestion write path;
// retrieval never calls it.
func (c *Client) AddEpisode(ctx context.Context, ep core.Episode) error {
	timestamp := ep.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, addEpisodeQuery, map[string]any{
			"uuid":      ep.ID,
			"content":   ep.Content,
			"source":    ep.Source,
			"timestamp": timestamp,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to add episode %s: %w", ep.ID, err)
	}

	log.FromCtx(ctx).Info().Str("episode_id", ep.ID).Str("source", ep.Source).Msg("added episode to knowledge graph")
	return nil
}

// Ping verifies the connection is still usable, used by health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}
