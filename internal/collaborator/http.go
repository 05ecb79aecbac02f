package collaborator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"ui-feedback-backend/internal/findings"
)

const (
	imageField       = "image"
	maxResponseBytes = 4 << 20
	defaultTimeout   = 120 * time.Second
)

// ErrTimeout is returned when the collaborator does not answer in time.
var ErrTimeout = errors.New("collaborator request timeout")

// StatusError reports a non-2xx collaborator response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("collaborator %s http status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("collaborator %s http status %d: %s", e.Op, e.Status, e.Body)
}

// HTTPClient talks to the collaborator over its multipart HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient constructs a client for baseURL. A non-positive timeout uses
// the default of two minutes.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("COLLABORATOR_URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) Preprocess(ctx context.Context, img Image) error {
	resp, err := c.postImage(ctx, "preprocess", img)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return nil
}

func (c *HTTPClient) Analyze(ctx context.Context, img Image) ([]findings.RawFinding, error) {
	resp, err := c.postImage(ctx, "analyze", img)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeBody(resp.Body)
}

func (c *HTTPClient) Previous(ctx context.Context) ([]findings.RawFinding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/analyze", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.do(req, "previous")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decodeBody(resp.Body)
}

func (c *HTTPClient) postImage(ctx context.Context, op string, img Image) (*http.Response, error) {
	body, contentType, err := encodeImage(img)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, op)
}

func (c *HTTPClient) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, op)
		}
		return nil, fmt.Errorf("collaborator %s: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return resp, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeImage(img Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileName := img.FileName
	if fileName == "" {
		fileName = "upload"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imageField, quoteEscaper.Replace(fileName)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func decodeBody(r io.Reader) ([]findings.RawFinding, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read collaborator response: %w", err)
	}
	return findings.DecodeRaw(data)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

var _ Client = (*HTTPClient)(nil)
var _ Client = PlaceholderClient{}
