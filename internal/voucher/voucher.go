// This package implements the lazy-minting voucher protocol: the typed
// encoding of a voucher under a fixed EIP-712 domain, the signer that
// holds the issuing authority's key, and independent signature
// verification.
package voucher

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DefaultName    = "BitstampNFT"
	DefaultVersion = "1"
)

// Voucher binds a recipient address to a content URI. It is redeemable
// for a mint exactly once; the verifying contract tracks consumed
// signatures, the issuing side keeps no record.
type Voucher struct {
	Recipient common.Address `json:"recipient"`
	URI       string         `json:"uri"`
}

// Domain scopes signatures to one application, network and contract.
// Built once at startup and never mutated afterwards.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

func NewDomain(chainID int64, verifyingContract common.Address) Domain {
	return Domain{
		Name:              DefaultName,
		Version:           DefaultVersion,
		ChainID:           big.NewInt(chainID),
		VerifyingContract: verifyingContract,
	}
}

// TypedData builds the EIP-712 payload for a voucher under this domain.
func (d Domain) TypedData(v Voucher) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"NFTVoucher": {
				{Name: "recipient", Type: "address"},
				{Name: "uri", Type: "string"},
			},
		},
		PrimaryType: "NFTVoucher",
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           (*math.HexOrDecimal256)(d.ChainID),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"recipient": v.Recipient.Hex(),
			"uri":       v.URI,
		},
	}
}

// Hash computes the EIP-712 digest that is signed for a voucher.
func (d Domain) Hash(v Voucher) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(d.TypedData(v))
	if err != nil {
		return nil, err
	}
	return hash, nil
}
