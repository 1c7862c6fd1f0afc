// This package contains the voucher issuance service and its HTTP API.
// The service is stateless: it signs any valid (recipient, uri) pair
// and keeps no record of what it signed. Replay prevention belongs to
// the on-chain verifier, which rejects a consumed signature.
package issuer

import (
	"strings"

	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/common"
)

// ValidationError reports bad caller input. It is surfaced verbatim
// to the caller and never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type Service struct {
	signer *voucher.Signer
}

func NewService(signer *voucher.Signer) *Service {
	return &Service{signer: signer}
}

// IssueVoucher validates (recipient, uri) and returns the voucher with
// its signature. Validation order: recipient syntax first, then
// non-empty uri. The uri is not dereferenced and no duplicate check is
// made; issuing twice for the same pair is allowed here and caught at
// redemption time by the contract.
func (s *Service) IssueVoucher(recipient string, uri string) (voucher.Voucher, []byte, error) {
	if !validRecipient(recipient) {
		return voucher.Voucher{}, nil, &ValidationError{Reason: "invalid recipient"}
	}
	if uri == "" {
		return voucher.Voucher{}, nil, &ValidationError{Reason: "invalid uri"}
	}
	v := voucher.Voucher{
		Recipient: common.HexToAddress(recipient),
		URI:       uri,
	}
	signature, err := s.signer.Sign(v)
	if err != nil {
		return voucher.Voucher{}, nil, err
	}
	return v, signature, nil
}

// validRecipient checks the address syntax and, for mixed-case input,
// the EIP-55 checksum. All-lowercase and all-uppercase forms carry no
// checksum and pass on syntax alone.
func validRecipient(recipient string) bool {
	if !common.IsHexAddress(recipient) {
		return false
	}
	hex := recipient
	if strings.HasPrefix(hex, "0x") || strings.HasPrefix(hex, "0X") {
		hex = hex[2:]
	}
	if hex == strings.ToLower(hex) || hex == strings.ToUpper(hex) {
		return true
	}
	return recipient == common.HexToAddress(recipient).Hex()
}

// Domain returns the fixed domain descriptor vouchers are signed under.
func (s *Service) Domain() voucher.Domain {
	return s.signer.Domain()
}
