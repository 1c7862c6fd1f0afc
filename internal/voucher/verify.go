package voucher

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const SignatureLength = 65

// RecoverSigner returns the address that produced sig over the typed
// encoding of (domain, voucher). Any byte change in the voucher or the
// domain yields a different address.
func RecoverSigner(d Domain, v Voucher, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d, expected %d",
			len(sig), SignatureLength)
	}
	hash, err := d.Hash(v)
	if err != nil {
		return common.Address{}, fmt.Errorf("typed data hash: %w", err)
	}

	// update the recovery id: Ecrecover expects v in {0,1}
	rsv := make([]byte, SignatureLength)
	copy(rsv, sig)
	if rsv[64] >= 27 {
		rsv[64] -= 27
	}

	sigPubkey, err := crypto.Ecrecover(hash, rsv)
	if err != nil {
		return common.Address{}, fmt.Errorf("ecrecover: %w", err)
	}
	pubkey, err := crypto.UnmarshalPubkey(sigPubkey)
	if err != nil {
		return common.Address{}, fmt.Errorf("unmarshal pubkey: %w", err)
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// Verify reports whether sig was produced by expected over (domain, v).
func Verify(d Domain, v Voucher, sig []byte, expected common.Address) bool {
	signer, err := RecoverSigner(d, v, sig)
	if err != nil {
		return false
	}
	return signer == expected
}
