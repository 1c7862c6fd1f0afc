package voucher

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	PURPOSE_INDEX   = 44
	COIN_TYPE_INDEX = 60
)

// SigningError indicates the signer itself is unusable, e.g. missing
// key material. Voucher content never causes it: any well-formed
// (address, string) pair is signable.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// Signer holds the issuing authority's private key. The key never
// leaves this struct and is read-only after construction, so
// concurrent Sign calls need no locking.
type Signer struct {
	key    *ecdsa.PrivateKey
	domain Domain
}

func NewSigner(key *ecdsa.PrivateKey, domain Domain) *Signer {
	return &Signer{key: key, domain: domain}
}

// NewSignerFromHex loads the signing key from a hex-encoded private key.
func NewSignerFromHex(hexKey string, domain Domain) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return NewSigner(key, domain), nil
}

// NewSignerFromMnemonic derives the signing key from a BIP-39 mnemonic
// at the standard ethereum path m/44'/60'/0'/0/0.
func NewSignerFromMnemonic(mnemonic string, domain Domain) (*Signer, error) {
	key, err := PrivateKeyFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return NewSigner(key, domain), nil
}

// Address returns the issuer address derived from the signing key.
func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *Signer) Domain() Domain {
	return s.domain
}

// Sign produces the 65-byte (r,s,v) signature over the typed encoding
// of (domain, voucher), with v in {27,28}.
func (s *Signer) Sign(v Voucher) ([]byte, error) {
	if s == nil || s.key == nil {
		return nil, &SigningError{Err: fmt.Errorf("signing key not loaded")}
	}
	hash, err := s.domain.Hash(v)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	signature, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, &SigningError{Err: err}
	}
	// https://github.com/ethereum/go-ethereum/blob/55599ee95d4151a2502465e0afc7c47bd1acba77/internal/ethapi/api.go#L442
	signature[64] += 27
	return signature, nil
}

func PrivateKeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	seed := bip39.NewSeed(mnemonic, "")

	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("fail to generate master key: %w", err)
	}

	childKey, err := masterKey.Derive(hdkeychain.HardenedKeyStart + PURPOSE_INDEX)
	if err != nil {
		return nil, fmt.Errorf("fail to derive key: %w", err)
	}
	childKey, err = childKey.Derive(hdkeychain.HardenedKeyStart + COIN_TYPE_INDEX)
	if err != nil {
		return nil, fmt.Errorf("fail to derive key: %w", err)
	}
	childKey, err = childKey.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, fmt.Errorf("fail to derive key: %w", err)
	}
	childKey, err = childKey.Derive(0)
	if err != nil {
		return nil, fmt.Errorf("fail to derive key: %w", err)
	}
	childKey, err = childKey.Derive(0)
	if err != nil {
		return nil, fmt.Errorf("fail to derive key: %w", err)
	}

	privKeyBytes, err := childKey.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("fail to obtain private key: %w", err)
	}

	privateKey, err := crypto.ToECDSA(privKeyBytes.Serialize())
	if err != nil {
		return nil, fmt.Errorf("fail to convert to ECDSA key: %w", err)
	}

	return privateKey, nil
}
