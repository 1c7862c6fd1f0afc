// This package implements the token detail read path: resolve a token
// to its content URI, fetch and parse the metadata, resolve the owner.
// It shares nothing with the mint pipeline beyond the gateway URL
// convention.
package viewer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tidwall/gjson"
)

// TokenReader is the read-only contract surface the viewer consumes.
// The BitstampNFT caller binding satisfies it.
type TokenReader interface {
	TokenURI(opts *bind.CallOpts, tokenId *big.Int) (string, error)
	OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error)
}

// Detail is everything the read path resolves for one token. The
// timestamp and location attributes are optional; their absence does
// not fail resolution.
type Detail struct {
	TokenID     *big.Int
	URI         string
	Owner       common.Address
	Name        string
	Description string
	Image       string
	Timestamp   string
	Location    string
}

// Time parses the timestamp attribute as unix seconds.
func (d *Detail) Time() (time.Time, bool) {
	n, err := strconv.ParseInt(d.Timestamp, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(n, 0), true
}

// MapEmbedURL builds the embeddable map URL for the location
// attribute. Returns false when the location is absent or malformed.
func (d *Detail) MapEmbedURL() (string, bool) {
	parts := strings.Split(d.Location, ",")
	if len(parts) < 2 {
		return "", false
	}
	lat := strings.TrimSpace(parts[0])
	lng := strings.TrimSpace(parts[1])
	return fmt.Sprintf("https://maps.google.com/maps?q=%s,%s&z=13&output=embed",
		url.QueryEscape(lat), url.QueryEscape(lng)), true
}

// EmbedSnippet renders the shareable HTML snippet linking back to the
// token page.
func (d *Detail) EmbedSnippet(appURL string) string {
	return fmt.Sprintf(
		`<a href="%s/view/%s" target="_blank" rel="noopener noreferrer" style="display:block;max-width:400px;margin:16px auto;text-decoration:none;">`+"\n"+
			`  <img src="%s" alt="NFT #%s" style="width:100%%;height:auto;border-radius:8px;" />`+"\n"+
			`</a>`,
		strings.TrimSuffix(appURL, "/"), d.TokenID, d.Image, d.TokenID)
}

type Viewer struct {
	reader  TokenReader
	gateway pinner.Gateway
	client  *http.Client
}

func NewViewer(reader TokenReader, gateway pinner.Gateway) *Viewer {
	return &Viewer{
		reader:  reader,
		gateway: gateway,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Detail resolves a token: tokenURI, metadata fetch, owner. The owner
// lookup is best effort; a failure there leaves the field zero without
// failing the whole resolution.
func (v *Viewer) Detail(ctx context.Context, tokenID *big.Int) (*Detail, error) {
	callOpts := &bind.CallOpts{Context: ctx}
	uri, err := v.reader.TokenURI(callOpts, tokenID)
	if err != nil {
		return nil, fmt.Errorf("tokenURI: %w", err)
	}
	metadata, err := v.fetchMetadata(ctx, v.gateway.Rewrite(uri))
	if err != nil {
		return nil, err
	}

	detail := &Detail{
		TokenID:     tokenID,
		URI:         uri,
		Name:        metadata.Get("name").String(),
		Description: metadata.Get("description").String(),
		Image:       v.gateway.Rewrite(metadata.Get("image").String()),
	}
	detail.Timestamp, _ = attributeValue(metadata.Get("attributes"), "timestamp")
	detail.Location, _ = attributeValue(metadata.Get("attributes"), "location")

	owner, err := v.reader.OwnerOf(callOpts, tokenID)
	if err != nil {
		slog.Warn("viewer: cannot resolve owner", "tokenId", tokenID, "err", err)
	} else {
		detail.Owner = owner
	}
	return detail, nil
}

func (v *Viewer) fetchMetadata(ctx context.Context, metadataURL string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetch metadata: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("fetch metadata: gateway returned %d", resp.StatusCode)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetch metadata: %w", err)
	}
	if !gjson.ValidBytes(content) {
		return gjson.Result{}, fmt.Errorf("fetch metadata: invalid json")
	}
	return gjson.ParseBytes(content), nil
}

// attributeValue finds an attribute by case-insensitive trait name,
// accepting both trait_type/name keys and value/val keys.
func attributeValue(attributes gjson.Result, trait string) (string, bool) {
	var value string
	var found bool
	attributes.ForEach(func(_, attr gjson.Result) bool {
		name := attr.Get("trait_type")
		if !name.Exists() {
			name = attr.Get("name")
		}
		if !strings.EqualFold(name.String(), trait) {
			return true
		}
		val := attr.Get("value")
		if !val.Exists() {
			val = attr.Get("val")
		}
		value = val.String()
		found = true
		return false
	})
	return value, found
}
