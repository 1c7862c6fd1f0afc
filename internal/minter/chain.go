package minter

import (
	"context"

	"github.com/bitstamp-labs/bitstamp/internal/contracts"
	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainRedeemer submits redemptions through the BitstampNFT contract.
type ChainRedeemer struct {
	client *ethclient.Client
	nft    *contracts.BitstampNFT
	opts   *bind.TransactOpts
}

func NewChainRedeemer(client *ethclient.Client, contractAddress common.Address, opts *bind.TransactOpts) (*ChainRedeemer, error) {
	nft, err := contracts.NewBitstampNFT(contractAddress, client)
	if err != nil {
		return nil, err
	}
	return &ChainRedeemer{client: client, nft: nft, opts: opts}, nil
}

func (r *ChainRedeemer) Redeem(ctx context.Context, v voucher.Voucher, signature []byte) (PendingTx, error) {
	opts := *r.opts
	opts.Context = ctx
	tx, err := r.nft.Redeem(&opts, contracts.BitstampNFTNFTVoucher{
		Recipient: v.Recipient,
		Uri:       v.URI,
	}, signature)
	if err != nil {
		return nil, err
	}
	return &chainPending{client: r.client, tx: tx}, nil
}

type chainPending struct {
	client *ethclient.Client
	tx     *types.Transaction
}

func (p *chainPending) Hash() common.Hash {
	return p.tx.Hash()
}

func (p *chainPending) Wait(ctx context.Context) (*types.Receipt, error) {
	return bind.WaitMined(ctx, p.client, p.tx)
}
