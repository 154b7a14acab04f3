package lattice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
)

const entitiesPath = "/api/v1/entities"

// Client implements pipeline.EntitySink using the Lattice entity REST API.
type Client struct {
	httpClient     *http.Client
	endpoint       string
	token          string
	sandboxesToken string
	logger         *slog.Logger
}

// NewClient creates an entity publisher for the Lattice environment at
// latticeURL. A bare host name is treated as https. sandboxesToken may be
// empty outside sandbox environments.
func NewClient(latticeURL, token, sandboxesToken string, logger *slog.Logger) *Client {
	return &Client{
		httpClient:     &http.Client{},
		endpoint:       baseURL(latticeURL) + entitiesPath,
		token:          token,
		sandboxesToken: sandboxesToken,
		logger:         logger,
	}
}

func baseURL(latticeURL string) string {
	u := strings.TrimRight(strings.TrimSpace(latticeURL), "/")
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}

// Publish upserts the entity. The request is bounded by ctx; every failure is
// returned as a *domain.PublishError.
func (c *Client) Publish(ctx context.Context, entity domain.StationEntity) error {
	body, err := json.Marshal(toWire(entity))
	if err != nil {
		return c.publishError(entity, 0, fmt.Errorf("serialize entity: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return c.publishError(entity, 0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.sandboxesToken != "" {
		req.Header.Set("anduril-sandbox-authorization", "Bearer "+c.sandboxesToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.publishError(entity, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.publishError(entity, resp.StatusCode, errors.New(strings.TrimSpace(string(msg))))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.Debug("entity upserted", "entity_id", entity.EntityID, "status", resp.StatusCode)
	return nil
}

func (c *Client) publishError(entity domain.StationEntity, status int, err error) *domain.PublishError {
	return &domain.PublishError{
		StationID:  entity.StationID,
		EntityID:   entity.EntityID,
		StatusCode: status,
		Err:        err,
	}
}
