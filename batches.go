package batchrouter

import (
	"context"
	"net/http"
)

// BatchesService exposes batch job operations.
type BatchesService struct {
	client *Client
}

// BatchCreateParams describe a new batch job. DatasetName is required.
// Model defaults to "auto", which routes each request to the cheapest
// capable provider. Provider and Description are sent only when non-empty.
type BatchCreateParams struct {
	DatasetName string
	Model       string
	Provider    string
	Description string
}

// Create submits a new batch job over the named dataset.
func (s *BatchesService) Create(ctx context.Context, params BatchCreateParams) (*BatchCreateResponse, error) {
	model := params.Model
	if model == "" {
		model = "auto"
	}
	body := batchCreateRequest{
		DatasetName: params.DatasetName,
		Model:       model,
		Provider:    params.Provider,
		Description: params.Description,
	}

	raw, err := s.client.do(ctx, http.MethodPost, "/v1/batches", nil, body)
	if err != nil {
		return nil, err
	}

	var out BatchCreateResponse
	if err := decodeResponse(raw, &out, "batch create"); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of batch jobs.
func (s *BatchesService) List(ctx context.Context, params *ListParams) ([]BatchJob, error) {
	raw, err := s.client.do(ctx, http.MethodGet, "/v1/batches", listQuery(params), nil)
	if err != nil {
		return nil, err
	}

	var page batchPage
	if err := decodeResponse(raw, &page, "batch list"); err != nil {
		return nil, err
	}
	if page.Data == nil {
		return []BatchJob{}, nil
	}
	return page.Data, nil
}

// Get returns the batch job with the given ID, including current status and
// progress counts.
func (s *BatchesService) Get(ctx context.Context, id string) (*BatchJob, error) {
	raw, err := s.client.do(ctx, http.MethodGet, "/v1/batches/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	var out BatchJob
	if err := decodeResponse(raw, &out, "batch job"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel cancels the batch job with the given ID and returns the updated
// job.
func (s *BatchesService) Cancel(ctx context.Context, id string) (*BatchJob, error) {
	raw, err := s.client.do(ctx, http.MethodPost, "/v1/batches/"+id+"/cancel", nil, nil)
	if err != nil {
		return nil, err
	}

	var out BatchJob
	if err := decodeResponse(raw, &out, "batch job"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadResults returns the job's results as raw JSONL bytes.
func (s *BatchesService) DownloadResults(ctx context.Context, id string) ([]byte, error) {
	return s.client.doRaw(ctx, http.MethodGet, "/v1/batches/"+id+"/results")
}

// DownloadErrors returns the job's failed requests as raw JSONL bytes. A
// job with no failures yields zero bytes.
func (s *BatchesService) DownloadErrors(ctx context.Context, id string) ([]byte, error) {
	return s.client.doRaw(ctx, http.MethodGet, "/v1/batches/"+id+"/errors")
}
