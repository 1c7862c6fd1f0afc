package issuer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Client talks to the issuance service HTTP API. It implements the
// publishing and voucher surfaces the mint orchestrator consumes, so
// the client side never holds provider credentials.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) PinBytes(ctx context.Context, data []byte, name string) (string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", &pinner.PublishError{Op: "pin-file", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return "", &pinner.PublishError{Op: "pin-file", Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &pinner.PublishError{Op: "pin-file", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pin-file", body)
	if err != nil {
		return "", &pinner.PublishError{Op: "pin-file", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		Cid string `json:"cid"`
	}
	if err := c.do(req, &result); err != nil {
		return "", &pinner.PublishError{Op: "pin-file", Err: err}
	}
	return result.Cid, nil
}

func (c *Client) PinJSON(ctx context.Context, v any, name string) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", &pinner.PublishError{Op: "pin-json", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pin-json", bytes.NewReader(payload))
	if err != nil {
		return "", &pinner.PublishError{Op: "pin-json", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Cid string `json:"cid"`
	}
	if err := c.do(req, &result); err != nil {
		return "", &pinner.PublishError{Op: "pin-json", Err: err}
	}
	return result.Cid, nil
}

// IssueVoucher requests a signed voucher for (recipient, uri).
func (c *Client) IssueVoucher(ctx context.Context, recipient common.Address, uri string) (voucher.Voucher, []byte, error) {
	payload, err := json.Marshal(VoucherBody{
		Recipient: recipient.Hex(),
		URI:       uri,
	})
	if err != nil {
		return voucher.Voucher{}, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/voucher", bytes.NewReader(payload))
	if err != nil {
		return voucher.Voucher{}, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result VoucherResponse
	if err := c.do(req, &result); err != nil {
		return voucher.Voucher{}, nil, err
	}
	signature, err := hexutil.Decode(result.Signature)
	if err != nil {
		return voucher.Voucher{}, nil, fmt.Errorf("decode signature: %w", err)
	}
	v := voucher.Voucher{
		Recipient: common.HexToAddress(result.Voucher.Recipient),
		URI:       result.Voucher.URI,
	}
	return v, signature, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return err
	}
	var result struct {
		Status string `json:"status"`
	}
	if err := c.do(req, &result); err != nil {
		return err
	}
	if result.Status != "ok" {
		return fmt.Errorf("unexpected status: %s", result.Status)
	}
	return nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var errBody errorResponse
		if err := json.Unmarshal(content, &errBody); err == nil && errBody.Error != "" {
			return fmt.Errorf("service returned %d: %s", resp.StatusCode, errBody.Error)
		}
		return fmt.Errorf("service returned %d: %s", resp.StatusCode, content)
	}
	return json.Unmarshal(content, result)
}
