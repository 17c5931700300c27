package batchrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/VladislavLysov/batchrouter-go/internal/form"
)

// datasetContentType is the content type sent for the uploaded file part.
const datasetContentType = "application/jsonl"

// DatasetsService exposes dataset operations.
type DatasetsService struct {
	client *Client
}

// UploadParams are the optional attributes of a dataset upload.
type UploadParams struct {
	// Name of the dataset. For Upload it defaults to the file's base name;
	// for UploadReader it is required.
	Name string
	// Description is sent only when non-empty.
	Description string
}

// ListParams control paginated list calls. Zero values use the server
// defaults: page 1, 20 items per page.
type ListParams struct {
	Page     int
	PageSize int
}

// Upload uploads the JSONL file at path as a new dataset.
func (s *DatasetsService) Upload(ctx context.Context, path string, params *UploadParams) (*DatasetUploadResponse, error) {
	var p UploadParams
	if params != nil {
		p = *params
	}
	if p.Name == "" {
		p.Name = filepath.Base(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	return s.upload(ctx, f, p)
}

// UploadReader uploads a dataset read from r. params.Name is required: with
// no file path there is nothing to derive a name from.
func (s *DatasetsService) UploadReader(ctx context.Context, r io.Reader, params *UploadParams) (*DatasetUploadResponse, error) {
	if params == nil || params.Name == "" {
		return nil, errors.New("name is required when uploading from a reader")
	}
	return s.upload(ctx, r, *params)
}

func (s *DatasetsService) upload(ctx context.Context, r io.Reader, p UploadParams) (*DatasetUploadResponse, error) {
	fields := map[string]string{"name": p.Name}
	if p.Description != "" {
		fields["description"] = p.Description
	}
	file := form.File{
		Field:       "file",
		Name:        p.Name,
		ContentType: datasetContentType,
		Reader:      r,
	}

	raw, err := s.client.doForm(ctx, http.MethodPost, "/v1/datasets", fields, file)
	if err != nil {
		return nil, err
	}

	var out DatasetUploadResponse
	if err := decodeResponse(raw, &out, "dataset upload"); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns one page of datasets.
func (s *DatasetsService) List(ctx context.Context, params *ListParams) ([]Dataset, error) {
	raw, err := s.client.do(ctx, http.MethodGet, "/v1/datasets", listQuery(params), nil)
	if err != nil {
		return nil, err
	}

	var page datasetPage
	if err := decodeResponse(raw, &page, "dataset list"); err != nil {
		return nil, err
	}
	if page.Data == nil {
		return []Dataset{}, nil
	}
	return page.Data, nil
}

// Get returns the dataset with the given ID.
func (s *DatasetsService) Get(ctx context.Context, id string) (*Dataset, error) {
	raw, err := s.client.do(ctx, http.MethodGet, "/v1/datasets/"+id, nil, nil)
	if err != nil {
		return nil, err
	}

	var out Dataset
	if err := decodeResponse(raw, &out, "dataset"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByName scans one page of up to 100 datasets for an exact name match.
// The second return value reports whether a match was found; no match is
// not an error. Datasets beyond the first 100 are not searched.
func (s *DatasetsService) GetByName(ctx context.Context, name string) (*Dataset, bool, error) {
	datasets, err := s.List(ctx, &ListParams{PageSize: 100})
	if err != nil {
		return nil, false, err
	}

	for i := range datasets {
		if datasets[i].Name == name {
			return &datasets[i], true, nil
		}
	}
	return nil, false, nil
}

// Delete removes the dataset with the given ID.
func (s *DatasetsService) Delete(ctx context.Context, id string) error {
	_, err := s.client.do(ctx, http.MethodDelete, "/v1/datasets/"+id, nil, nil)
	return err
}
