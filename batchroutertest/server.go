// Package batchroutertest provides an in-process fake of the BatchRouter
// API for tests: an httptest server with in-memory datasets, batch jobs,
// and a model catalog, speaking the same wire contract as the production
// API.
package batchroutertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	batchrouter "github.com/VladislavLysov/batchrouter-go"
)

// APIKey is the bearer credential the fake server accepts.
const APIKey = "br_test_key"

// Server is a fake BatchRouter API backed by in-memory state. All methods
// are safe for concurrent use.
type Server struct {
	httpServer *httptest.Server

	mu       sync.Mutex
	datasets map[string]batchrouter.Dataset
	batches  map[string]batchrouter.BatchJob
	models   []batchrouter.Model
	results  map[string][]byte
	errors   map[string][]byte
}

// NewServer starts a fake API server. The caller owns it and must Close it.
func NewServer() *Server {
	s := &Server{
		datasets: make(map[string]batchrouter.Dataset),
		batches:  make(map[string]batchrouter.BatchJob),
		results:  make(map[string][]byte),
		errors:   make(map[string][]byte),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", s.handleDatasetUpload)
			r.Get("/", s.handleDatasetList)
			r.Get("/{datasetID}", s.handleDatasetGet)
			r.Delete("/{datasetID}", s.handleDatasetDelete)
		})

		r.Route("/batches", func(r chi.Router) {
			r.Post("/", s.handleBatchCreate)
			r.Get("/", s.handleBatchList)
			r.Get("/{batchID}", s.handleBatchGet)
			r.Post("/{batchID}/cancel", s.handleBatchCancel)
			r.Get("/{batchID}/results", s.handleBatchResults)
			r.Get("/{batchID}/errors", s.handleBatchErrors)
		})

		r.Route("/routing/models", func(r chi.Router) {
			r.Get("/", s.handleModelList)
			r.Get("/{modelName}", s.handleModelGet)
		})
	})

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Client returns a batchrouter.Client configured against this server.
func (s *Server) Client(opts ...batchrouter.Option) (*batchrouter.Client, error) {
	base := []batchrouter.Option{batchrouter.WithBaseURL(s.httpServer.URL)}
	return batchrouter.New(APIKey, append(base, opts...)...)
}

// SeedDataset stores a dataset, filling ID, Status, and CreatedAt when
// unset, and returns the stored value.
func (s *Server) SeedDataset(d batchrouter.Dataset) batchrouter.Dataset {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = "ready"
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.datasets[d.ID] = d
	s.mu.Unlock()
	return d
}

// SeedBatch stores a batch job, filling ID, DatasetID, Status, Model, and
// CreatedAt when unset, and returns the stored value.
func (s *Server) SeedBatch(b batchrouter.BatchJob) batchrouter.BatchJob {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.DatasetID == "" {
		b.DatasetID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = "queued"
	}
	if b.Model == "" {
		b.Model = "auto"
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.batches[b.ID] = b
	s.mu.Unlock()
	return b
}

// SeedModels replaces the model catalog.
func (s *Server) SeedModels(models ...batchrouter.Model) {
	s.mu.Lock()
	s.models = models
	s.mu.Unlock()
}

// SetResults sets the JSONL results payload served for a batch.
func (s *Server) SetResults(batchID string, data []byte) {
	s.mu.Lock()
	s.results[batchID] = data
	s.mu.Unlock()
}

// SetErrors sets the JSONL errors payload served for a batch.
func (s *Server) SetErrors(batchID string, data []byte) {
	s.mu.Lock()
	s.errors[batchID] = data
	s.mu.Unlock()
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			writeDetail(w, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed: malformed multipart body")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed: name is required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed: file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Server error reading upload")
		return
	}

	size := int64(len(content))
	records := countRecords(content)

	ds := batchrouter.Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		Status:      "ready",
		FileSize:    &size,
		RecordCount: &records,
		CreatedAt:   time.Now().UTC(),
	}
	if desc := r.FormValue("description"); desc != "" {
		ds.Description = &desc
	}

	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, batchrouter.DatasetUploadResponse{
		ID:     ds.ID,
		Name:   ds.Name,
		Status: ds.Status,
	})
}

func (s *Server) handleDatasetList(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	s.mu.Lock()
	all := make([]batchrouter.Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		all = append(all, d)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	writePage(w, page, pageSize, len(all), func(start, end int) any {
		return all[start:end]
	})
}

func (s *Server) handleDatasetGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")

	s.mu.Lock()
	ds, ok := s.datasets[id]
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Dataset not found")
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleDatasetDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")

	s.mu.Lock()
	_, ok := s.datasets[id]
	delete(s.datasets, id)
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Dataset not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBatchCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetName string `json:"dataset_name"`
		Model       string `json:"model"`
		Provider    string `json:"provider"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed: malformed JSON body")
		return
	}
	if req.DatasetName == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed: dataset_name is required")
		return
	}
	if req.Model == "" {
		req.Model = "auto"
	}

	s.mu.Lock()
	var dataset *batchrouter.Dataset
	for id := range s.datasets {
		d := s.datasets[id]
		if d.Name == req.DatasetName {
			dataset = &d
			break
		}
	}
	if dataset == nil {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Dataset '"+req.DatasetName+"' not found")
		return
	}

	job := batchrouter.BatchJob{
		ID:          uuid.NewString(),
		DatasetID:   dataset.ID,
		DatasetName: &dataset.Name,
		Model:       req.Model,
		Status:      "queued",
		CreatedAt:   time.Now().UTC(),
	}
	if dataset.RecordCount != nil {
		rc := *dataset.RecordCount
		job.RequestCount = &rc
	}
	if req.Provider != "" {
		job.ProviderName = &req.Provider
	}
	if req.Description != "" {
		job.Description = &req.Description
	}
	s.batches[job.ID] = job
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, batchrouter.BatchCreateResponse{
		ID:           job.ID,
		Status:       job.Status,
		Model:        job.Model,
		ProviderName: job.ProviderName,
	})
}

func (s *Server) handleBatchList(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	s.mu.Lock()
	all := make([]batchrouter.BatchJob, 0, len(s.batches))
	for _, b := range s.batches {
		all = append(all, b)
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	writePage(w, page, pageSize, len(all), func(start, end int) any {
		return all[start:end]
	})
}

func (s *Server) handleBatchGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "batchID")

	s.mu.Lock()
	job, ok := s.batches[id]
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Batch not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleBatchCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "batchID")

	s.mu.Lock()
	job, ok := s.batches[id]
	if !ok {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Batch not found")
		return
	}
	if terminal(job.Status) {
		s.mu.Unlock()
		writeDetail(w, http.StatusUnprocessableEntity, "Validation failed: batch is already "+job.Status)
		return
	}

	job.Status = "cancelled"
	now := time.Now().UTC()
	job.CompletedAt = &now
	s.batches[id] = job
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleBatchResults(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, s.results)
}

func (s *Server) handleBatchErrors(w http.ResponseWriter, r *http.Request) {
	s.serveArtifact(w, r, s.errors)
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, store map[string][]byte) {
	id := chi.URLParam(r, "batchID")

	s.mu.Lock()
	_, ok := s.batches[id]
	data := store[id]
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Batch not found")
		return
	}

	w.Header().Set("Content-Type", "application/jsonl")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleModelList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	models := make([]batchrouter.Model, len(s.models))
	copy(models, s.models)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleModelGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "modelName")

	s.mu.Lock()
	var found *batchrouter.Model
	for i := range s.models {
		if s.models[i].Name == name {
			m := s.models[i]
			found = &m
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		// Unknown model names yield a null body, not a 404.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func terminal(status string) bool {
	switch status {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}

func countRecords(data []byte) int {
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}

func pageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

func writePage(w http.ResponseWriter, page, pageSize, total int, window func(start, end int) any) {
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":      window(start, end),
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"has_more":  end < total,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
