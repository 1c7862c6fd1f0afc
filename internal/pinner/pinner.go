// This package wraps the Pinata pinning API: pin raw bytes or a JSON
// document, get back a content identifier.
package pinner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://api.pinata.cloud"

const httpTimeout = 30 * time.Second

// PublishError is a storage provider failure. The client does not
// retry internally; session state is preserved so the caller can.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Client calls the Pinata pinning API.
type Client struct {
	baseURL string
	apiKey  string
	secret  string
	client  *http.Client
}

func NewClient(baseURL, apiKey, secret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  secret,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// PinBytes pins raw bytes under the given display name and returns the
// content identifier. Repeated calls with identical bytes may or may
// not return the same identifier; callers must not assume either way.
func (c *Client) PinBytes(ctx context.Context, data []byte, name string) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", &PublishError{Op: "pin-file", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &PublishError{Op: "pin-file", Err: err}
	}
	metadata, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", &PublishError{Op: "pin-file", Err: err}
	}
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return "", &PublishError{Op: "pin-file", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &PublishError{Op: "pin-file", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return "", &PublishError{Op: "pin-file", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.pin(req, "pin-file")
}

// PinJSON pins a JSON document under the given display name. The value
// must be serializable without loss; binary fields do not belong here.
func (c *Client) PinJSON(ctx context.Context, v any, name string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"pinataContent":  v,
		"pinataMetadata": map[string]string{"name": name},
	})
	if err != nil {
		return "", &PublishError{Op: "pin-json", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pinning/pinJSONToIPFS", bytes.NewReader(payload))
	if err != nil {
		return "", &PublishError{Op: "pin-json", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.pin(req, "pin-json")
}

func (c *Client) pin(req *http.Request, op string) (string, error) {
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &PublishError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &PublishError{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &PublishError{
			Op:  op,
			Err: fmt.Errorf("provider returned %d: %s", resp.StatusCode, content),
		}
	}
	var result pinResponse
	if err := json.Unmarshal(content, &result); err != nil {
		return "", &PublishError{Op: op, Err: err}
	}
	if result.IpfsHash == "" {
		return "", &PublishError{Op: op, Err: fmt.Errorf("provider returned no content identifier")}
	}
	slog.Debug("pinner: pinned", "op", op, "cid", result.IpfsHash)
	return result.IpfsHash, nil
}
