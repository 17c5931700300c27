package batchrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/VladislavLysov/batchrouter-go/callback"
	"github.com/VladislavLysov/batchrouter-go/internal/form"
)

// apiPrefix is prepended to every endpoint path.
const apiPrefix = "/api"

const contentTypeJSON = "application/json"

// do sends a JSON round trip: body (if any) is marshaled, the response body
// is returned raw for the caller to decode. A 204 yields a nil RawMessage.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reader, contentTypeJSON)
	if err != nil {
		return nil, err
	}

	raw, status, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// doForm sends a multipart/form-data request. The JSON content type is not
// set; the multipart writer supplies its own, boundary included.
func (c *Client) doForm(ctx context.Context, method, path string, fields map[string]string, file form.File) (json.RawMessage, error) {
	body, contentType, err := form.Encode(fields, file)
	if err != nil {
		return nil, fmt.Errorf("encode multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}

	raw, status, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// doRaw sends a request and returns the response body bytes unchanged. Used
// for file-style downloads. Error routing is identical to do.
func (c *Client) doRaw(ctx context.Context, method, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, nil, nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}
	raw, _, err := c.roundTrip(req)
	return raw, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// roundTrip executes the request, reads the full body, and translates
// non-2xx responses into *Error. Registered callbacks observe every outcome.
func (c *Client) roundTrip(req *http.Request) ([]byte, int, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("send request: %w", err)
		c.observe(req, 0, 0, start, err)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("read response: %w", err)
		c.observe(req, resp.StatusCode, 0, start, err)
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := translateError(resp.StatusCode, body)
		c.observe(req, resp.StatusCode, int64(len(body)), start, apiErr)
		return nil, 0, apiErr
	}

	c.observe(req, resp.StatusCode, int64(len(body)), start, nil)
	return body, resp.StatusCode, nil
}

// translateError extracts the message for a non-2xx response: the JSON
// detail field if present, else the raw body text, else "HTTP <status>".
func translateError(status int, body []byte) *Error {
	var envelope struct {
		Detail string `json:"detail"`
	}

	msg := ""
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		msg = envelope.Detail
	} else if text := bytes.TrimSpace(body); len(text) > 0 {
		msg = string(body)
	} else {
		msg = fmt.Sprintf("HTTP %d", status)
	}

	return apiError(status, msg)
}

func (c *Client) observe(req *http.Request, status int, bytesIn int64, start time.Time, err error) {
	if len(c.callbacks) == 0 {
		return
	}

	end := time.Now()
	data := callback.LogData{
		Method:     req.Method,
		Path:       req.URL.Path,
		RequestID:  req.Header.Get("X-Request-ID"),
		StatusCode: status,
		StartTime:  start,
		EndTime:    end,
		Latency:    end.Sub(start),
		BytesIn:    bytesIn,
		Error:      err,
	}

	for _, cb := range c.callbacks {
		if err != nil {
			cb.LogFailure(data)
		} else {
			cb.LogSuccess(data)
		}
	}
}

// listQuery builds the page/page_size query for paginated list endpoints.
func listQuery(params *ListParams) url.Values {
	page, size := 1, 20
	if params != nil {
		if params.Page > 0 {
			page = params.Page
		}
		if params.PageSize > 0 {
			size = params.PageSize
		}
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	return q
}
