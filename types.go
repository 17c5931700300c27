package batchrouter

import (
	"encoding/json"
	"fmt"
	"time"
)

// Dataset is a JSONL dataset stored by the API for batch processing.
type Dataset struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     *string    `json:"description,omitempty"`
	FileSize        *int64     `json:"file_size,omitempty"`
	RecordCount     *int       `json:"record_count,omitempty"`
	Status          string     `json:"status"`
	ValidationError *string    `json:"validation_error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

func (d *Dataset) validate() error {
	switch {
	case d.ID == "":
		return missingField("id")
	case d.Name == "":
		return missingField("name")
	case d.Status == "":
		return missingField("status")
	case d.CreatedAt.IsZero():
		return missingField("created_at")
	}
	return nil
}

// DatasetUploadResponse is returned when a new dataset is uploaded.
type DatasetUploadResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (r *DatasetUploadResponse) validate() error {
	switch {
	case r.ID == "":
		return missingField("id")
	case r.Name == "":
		return missingField("name")
	case r.Status == "":
		return missingField("status")
	}
	return nil
}

// ModelProvider is a provider offering a specific model.
type ModelProvider struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	BatchInputPricePer1M  *float64 `json:"batch_input_price_per_1m,omitempty"`
	BatchOutputPricePer1M *float64 `json:"batch_output_price_per_1m,omitempty"`
	IsBatchSupported      bool     `json:"is_batch_supported"`
}

// UnmarshalJSON decodes a provider, defaulting is_batch_supported to true
// when the field is absent.
func (p *ModelProvider) UnmarshalJSON(data []byte) error {
	type alias ModelProvider
	aux := struct {
		IsBatchSupported *bool `json:"is_batch_supported"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.IsBatchSupported = aux.IsBatchSupported == nil || *aux.IsBatchSupported
	return nil
}

func (p *ModelProvider) validate() error {
	switch {
	case p.ID == "":
		return missingField("id")
	case p.Name == "":
		return missingField("name")
	}
	return nil
}

// Model is an LLM model available for batch processing.
type Model struct {
	Name            string          `json:"name"`
	DisplayName     *string         `json:"display_name,omitempty"`
	Description     *string         `json:"description,omitempty"`
	ContextWindow   *int            `json:"context_window,omitempty"`
	MaxOutputTokens *int            `json:"max_output_tokens,omitempty"`
	Capabilities    []string        `json:"capabilities"`
	IsDeprecated    bool            `json:"is_deprecated"`
	ReleaseDate     *string         `json:"release_date,omitempty"`
	Providers       []ModelProvider `json:"providers"`
}

// UnmarshalJSON decodes a model, normalizing absent list fields to empty
// slices.
func (m *Model) UnmarshalJSON(data []byte) error {
	type alias Model
	if err := json.Unmarshal(data, (*alias)(m)); err != nil {
		return err
	}
	if m.Capabilities == nil {
		m.Capabilities = []string{}
	}
	if m.Providers == nil {
		m.Providers = []ModelProvider{}
	}
	return nil
}

func (m *Model) validate() error {
	if m.Name == "" {
		return missingField("name")
	}
	for i := range m.Providers {
		if err := m.Providers[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

// BatchJob is a batch job processing LLM requests against a dataset.
type BatchJob struct {
	ID             string     `json:"id"`
	DatasetID      string     `json:"dataset_id"`
	DatasetName    *string    `json:"dataset_name,omitempty"`
	Model          string     `json:"model"`
	ProviderID     *string    `json:"provider_id,omitempty"`
	ProviderName   *string    `json:"provider_name,omitempty"`
	Status         string     `json:"status"`
	Description    *string    `json:"description,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	RequestCount   *int       `json:"request_count,omitempty"`
	CompletedCount *int       `json:"completed_count,omitempty"`
	FailedCount    *int       `json:"failed_count,omitempty"`
	InputTokens    *int64     `json:"input_tokens,omitempty"`
	OutputTokens   *int64     `json:"output_tokens,omitempty"`
	EstimatedCost  *float64   `json:"estimated_cost,omitempty"`
	ActualCost     *float64   `json:"actual_cost,omitempty"`
	HasResults     bool       `json:"has_results"`
	HasErrors      bool       `json:"has_errors"`
	CreatedAt      time.Time  `json:"created_at"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func (b *BatchJob) validate() error {
	switch {
	case b.ID == "":
		return missingField("id")
	case b.DatasetID == "":
		return missingField("dataset_id")
	case b.Model == "":
		return missingField("model")
	case b.Status == "":
		return missingField("status")
	case b.CreatedAt.IsZero():
		return missingField("created_at")
	}
	return nil
}

// BatchCreateResponse is returned when a new batch job is created.
type BatchCreateResponse struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Model         string   `json:"model"`
	ProviderID    *string  `json:"provider_id,omitempty"`
	ProviderName  *string  `json:"provider_name,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}

func (r *BatchCreateResponse) validate() error {
	switch {
	case r.ID == "":
		return missingField("id")
	case r.Status == "":
		return missingField("status")
	case r.Model == "":
		return missingField("model")
	}
	return nil
}

// batchCreateRequest is the wire payload for creating a batch job. Optional
// fields are omitted entirely when empty.
type batchCreateRequest struct {
	DatasetName string `json:"dataset_name"`
	Model       string `json:"model"`
	Provider    string `json:"provider,omitempty"`
	Description string `json:"description,omitempty"`
}

// datasetPage and batchPage mirror the paginated list envelope.
type datasetPage struct {
	Data     []Dataset `json:"data"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	HasMore  bool      `json:"has_more"`
}

type batchPage struct {
	Data     []BatchJob `json:"data"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	HasMore  bool       `json:"has_more"`
}

func (p *datasetPage) validate() error {
	for i := range p.Data {
		if err := p.Data[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *batchPage) validate() error {
	for i := range p.Data {
		if err := p.Data[i].validate(); err != nil {
			return err
		}
	}
	return nil
}

func missingField(field string) error {
	return fmt.Errorf("missing required field %q", field)
}

// decodeResponse parses a success-path body into dst and checks its required
// fields.
func decodeResponse(raw json.RawMessage, dst interface{ validate() error }, what string) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse %s response: %w", what, err)
	}
	if err := dst.validate(); err != nil {
		return fmt.Errorf("parse %s response: %w", what, err)
	}
	return nil
}
