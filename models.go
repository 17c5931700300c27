package batchrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ModelsService exposes the model catalog.
type ModelsService struct {
	client *Client
}

// List returns all models available for batch processing. The endpoint
// responds with a bare array, not a paginated envelope.
func (s *ModelsService) List(ctx context.Context) ([]Model, error) {
	raw, err := s.client.do(ctx, http.MethodGet, "/v1/routing/models", nil, nil)
	if err != nil {
		return nil, err
	}

	var models []Model
	if err := json.Unmarshal(raw, &models); err != nil {
		return nil, fmt.Errorf("parse model list response: %w", err)
	}
	for i := range models {
		if err := models[i].validate(); err != nil {
			return nil, fmt.Errorf("parse model list response: %w", err)
		}
	}
	return models, nil
}

// Get returns the model with the given name. The second return value
// reports whether the model exists: the server signals an unknown name with
// an empty or null body, which is absence, not an error. A 404 status still
// surfaces as an error.
func (s *ModelsService) Get(ctx context.Context, name string) (*Model, bool, error) {
	raw, err := s.client.do(ctx, http.MethodGet, "/v1/routing/models/"+name, nil, nil)
	if err != nil {
		return nil, false, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, false, nil
	}

	var out Model
	if err := decodeResponse(raw, &out, "model"); err != nil {
		return nil, false, err
	}
	return &out, true, nil
}
