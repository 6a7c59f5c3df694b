// Package uploadclient drives uploads through the relay: it asks for a
// plan, pushes each part (or the whole object in simple mode), and commits
// or aborts the session based on the outcome.
package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultPartRetries = 2

// CompletedPart mirrors the relay's wire shape for one uploaded part.
type CompletedPart struct {
	PartNumber int    `json:"partNumber"`
	ETag       string `json:"etag"`
}

// ObjectInfo mirrors the relay's wire shape for one stored object.
type ObjectInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Client is an HTTP client for the relay's upload protocol.
type Client struct {
	baseURL    string
	hc         *http.Client
	retries    int
	onProgress ProgressFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithPartRetries sets how many times a failed part transfer is retried
// before the upload is aborted.
func WithPartRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithProgress registers a callback receiving monotonic progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) { c.onProgress = fn }
}

// New creates a relay client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{},
		retries: defaultPartRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (e *apiError) String() string {
	if e == nil {
		return "unknown error"
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

type initiateData struct {
	Mode      string       `json:"mode"`
	Key       string       `json:"key"`
	ChunkSize int64        `json:"chunkSize"`
	UploadURL string       `json:"uploadUrl"`
	UploadID  string       `json:"uploadId"`
	Parts     []partTarget `json:"parts"`
}

type partTarget struct {
	PartNumber int    `json:"partNumber"`
	URL        string `json:"url"`
}

// Upload uploads the file at path through the relay.
func (c *Client) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	return c.UploadReader(ctx, filepath.Base(path), f, info.Size())
}

// UploadReader uploads size bytes from r under the given filename. Parts
// are read through io.SectionReader, so memory stays bounded by the
// transport buffer rather than the part size.
func (c *Client) UploadReader(ctx context.Context, filename string, r io.ReaderAt, size int64) error {
	plan, err := c.initiate(ctx, filename, size)
	if err != nil {
		return err
	}

	tracker := newTracker(size, c.onProgress)

	if plan.Mode == "simple" {
		if err := c.putSimple(ctx, plan.UploadURL, r, size, tracker); err != nil {
			return err
		}
		tracker.finish()
		return nil
	}

	parts := make([]CompletedPart, 0, len(plan.Parts))
	var offset int64
	for _, target := range plan.Parts {
		partSize := plan.ChunkSize
		if offset+partSize > size {
			partSize = size - offset
		}

		etag, err := c.putPart(ctx, target.URL, r, offset, partSize, tracker)
		if err != nil {
			// One failed part poisons the session: abort so the backend
			// reclaims the parts that did land, and never call complete.
			c.abort(ctx, filename, plan.UploadID)
			return fmt.Errorf("part %d: %w", target.PartNumber, err)
		}

		parts = append(parts, CompletedPart{PartNumber: target.PartNumber, ETag: etag})
		tracker.commit(partSize)
		offset += partSize
	}

	if err := c.complete(ctx, filename, plan.UploadID, parts); err != nil {
		c.abort(ctx, filename, plan.UploadID)
		return err
	}

	tracker.finish()
	return nil
}

// Download streams the object at key into w.
func (c *Client) Download(ctx context.Context, key string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/objects/"+url.PathEscape(key), nil)
	if err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	tracker := newTracker(resp.ContentLength, c.onProgress)
	if _, err := io.Copy(w, tracker.reader(resp.Body)); err != nil {
		return err
	}
	tracker.finish()
	return nil
}

// List fetches the stored object listing.
func (c *Client) List(ctx context.Context) ([]ObjectInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/objects", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var objects []ObjectInfo
	if err := decodeData(resp, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func (c *Client) initiate(ctx context.Context, filename string, size int64) (*initiateData, error) {
	body := map[string]interface{}{"filename": filename, "fileSize": size}

	var data initiateData
	if err := c.postJSON(ctx, "/upload/initiate", body, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) putSimple(ctx context.Context, uploadURL string, r io.ReaderAt, size int64, tracker *tracker) error {
	body := tracker.reader(io.NewSectionReader(r, 0, size))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+uploadURL, body)
	if err != nil {
		return err
	}
	req.ContentLength = size

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// putPart uploads one part with transport-level retries. Each attempt gets
// a fresh section reader; progress for the attempt is discarded on failure
// so the reported total never goes backwards.
func (c *Client) putPart(ctx context.Context, partURL string, r io.ReaderAt, offset, size int64, tracker *tracker) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		attemptReader := tracker.reader(io.NewSectionReader(r, offset, size))
		etag, retryable, err := c.putPartOnce(ctx, partURL, attemptReader, size)
		tracker.rollback()
		if err == nil {
			return etag, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return "", lastErr
}

func (c *Client) putPartOnce(ctx context.Context, partURL string, body io.Reader, size int64) (etag string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+partURL, body)
	if err != nil {
		return "", false, err
	}
	req.ContentLength = size

	resp, err := c.hc.Do(req)
	if err != nil {
		// Transport failure: the part is idempotent per number, retry.
		return "", true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode >= 500, decodeError(resp)
	}

	var part CompletedPart
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", false, fmt.Errorf("decoding part response: %w", err)
	}
	if err := json.Unmarshal(env.Data, &part); err != nil {
		return "", false, fmt.Errorf("decoding part response: %w", err)
	}
	return part.ETag, false, nil
}

func (c *Client) complete(ctx context.Context, filename, uploadID string, parts []CompletedPart) error {
	body := map[string]interface{}{
		"filename": filename,
		"uploadId": uploadID,
		"parts":    parts,
	}
	return c.postJSON(ctx, "/upload/complete", body, nil)
}

// abort is best-effort cleanup; its own failure is not surfaced because the
// caller is already on an error path and the backend TTL is the backstop.
func (c *Client) abort(ctx context.Context, filename, uploadID string) {
	body := map[string]interface{}{"filename": filename, "uploadId": uploadID}
	_ = c.postJSON(ctx, "/upload/abort", body, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		if resp.StatusCode != http.StatusOK {
			return decodeError(resp)
		}
		return nil
	}
	return decodeData(resp, out)
}

func decodeData(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding relay response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("relay: %s", env.Error.String())
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func decodeError(resp *http.Response) error {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != nil {
		return fmt.Errorf("relay: %s", env.Error.String())
	}
	return fmt.Errorf("relay: unexpected status %s", resp.Status)
}
