package pinner

import "strings"

const DefaultGatewayBase = "https://gateway.pinata.cloud/ipfs"

// Gateway renders content identifiers as fetchable URLs.
type Gateway struct {
	Base string
}

func NewGateway(base string) Gateway {
	if base == "" {
		base = DefaultGatewayBase
	}
	return Gateway{Base: strings.TrimSuffix(base, "/")}
}

// URL renders a content identifier as <base>/<cid>.
func (g Gateway) URL(cid string) string {
	return g.Base + "/" + cid
}

// Rewrite maps an ipfs:// locator to the gateway URL form. Any other
// URI passes through unchanged.
func (g Gateway) Rewrite(uri string) string {
	rest, found := strings.CutPrefix(uri, "ipfs://")
	if !found {
		return uri
	}
	rest = strings.TrimPrefix(rest, "ipfs/")
	return g.URL(rest)
}
