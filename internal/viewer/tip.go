package viewer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const transferGasLimit = 21_000

// Tipper sends plain value transfers. Tipping is an independent
// on-chain action: it shares no state with the mint pipeline, and its
// failure does not affect displayed metadata.
type Tipper struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	chainID *big.Int
}

func NewTipper(client *ethclient.Client, key *ecdsa.PrivateKey, chainID *big.Int) *Tipper {
	return &Tipper{client: client, key: key, chainID: chainID}
}

// Tip transfers amountWei to the given address and returns the
// transaction hash.
func (t *Tipper) Tip(ctx context.Context, to common.Address, amountWei *big.Int) (common.Hash, error) {
	if amountWei == nil || amountWei.Sign() <= 0 {
		return common.Hash{}, fmt.Errorf("invalid tip amount")
	}
	from := crypto.PubkeyToAddress(t.key.PublicKey)
	nonce, err := t.client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := t.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}
	tx := types.NewTransaction(nonce, to, amountWei, transferGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(t.chainID), t.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}
	if err := t.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}
	return signed.Hash(), nil
}

// TipOwner resolves the token owner and tips them.
func (v *Viewer) TipOwner(ctx context.Context, tipper *Tipper, tokenID *big.Int, amountWei *big.Int) (common.Hash, error) {
	owner, err := v.reader.OwnerOf(&bind.CallOpts{Context: ctx}, tokenID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("ownerOf: %w", err)
	}
	return tipper.Tip(ctx, owner, amountWei)
}
