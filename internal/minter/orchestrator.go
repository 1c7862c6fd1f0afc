package minter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const DefaultLocationTimeout = 10 * time.Second

// Publisher pins content and returns its identifier.
type Publisher interface {
	PinBytes(ctx context.Context, data []byte, name string) (string, error)
	PinJSON(ctx context.Context, v any, name string) (string, error)
}

// VoucherIssuer returns a signed voucher for (recipient, uri).
type VoucherIssuer interface {
	IssueVoucher(ctx context.Context, recipient common.Address, uri string) (voucher.Voucher, []byte, error)
}

// PendingTx is a submitted redemption awaiting inclusion.
type PendingTx interface {
	Hash() common.Hash
	Wait(ctx context.Context) (*types.Receipt, error)
}

// Redeemer submits the on-chain redemption.
type Redeemer interface {
	Redeem(ctx context.Context, v voucher.Voucher, signature []byte) (PendingTx, error)
}

// Locator reports the device position. Implementations may block; the
// orchestrator bounds the wait and substitutes FallbackLocation.
type Locator interface {
	Current(ctx context.Context) (Location, error)
}

// Attribute is one trait on the token metadata.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

// Orchestrator runs mint sessions through the pipeline. Stages within
// one session execute strictly in sequence; sessions are independent
// of one another.
type Orchestrator struct {
	Publisher Publisher
	Issuer    VoucherIssuer
	Redeemer  Redeemer
	Locator   Locator
	Gateway   pinner.Gateway

	// Bound on the geolocation wait. Zero means DefaultLocationTimeout.
	LocationTimeout time.Duration
}

func (o *Orchestrator) NewSession() *Session {
	return &Session{state: StateIdle}
}

// Capture records the acquired image and timestamps the session. No
// network activity.
func (o *Orchestrator) Capture(s *Session, image []byte, caption string) error {
	if !s.at(StateIdle, StageCapture) {
		return fmt.Errorf("cannot capture in state %s", s.state)
	}
	if len(image) == 0 {
		return s.fail(StageCapture, fmt.Errorf("empty image"))
	}
	s.rawImage = image
	s.caption = caption
	s.timestamp = time.Now().Unix()
	s.fileName = fmt.Sprintf("photo_%d.jpg", s.timestamp)
	s.failure = nil
	s.state = StateCaptured
	slog.Debug("minter: captured", "bytes", len(image), "timestamp", s.timestamp)
	return nil
}

// PublishImage pins the raw image. The bytes stay on the session, so a
// failed publish is retriable without recapturing.
func (o *Orchestrator) PublishImage(ctx context.Context, s *Session) error {
	if !s.at(StateCaptured, StagePublishImage) {
		return fmt.Errorf("cannot publish image in state %s", s.state)
	}
	cid, err := o.Publisher.PinBytes(ctx, s.rawImage, s.fileName)
	if err != nil {
		return s.fail(StagePublishImage, err)
	}
	s.imageCID = cid
	s.imageURL = o.Gateway.URL(cid)
	s.failure = nil
	s.state = StateImagePublished
	slog.Debug("minter: image published", "cid", cid)
	return nil
}

// PublishMetadata resolves the location (best effort, bounded), builds
// the token metadata and pins it. The image identifier is preserved
// across failures, so a retry re-pins only the metadata.
func (o *Orchestrator) PublishMetadata(ctx context.Context, s *Session) error {
	if !s.at(StateImagePublished, StagePublishMetadata) {
		return fmt.Errorf("cannot publish metadata in state %s", s.state)
	}
	if s.location == nil {
		loc := o.locate(ctx)
		s.location = &loc
	}
	description := s.caption
	if description == "" {
		description = fmt.Sprintf("Captured @ %s",
			time.Unix(s.timestamp, 0).Format(time.RFC1123))
	}
	metadata := Metadata{
		Name:        fmt.Sprintf("BitstampNFT #%d", s.timestamp),
		Description: description,
		Image:       s.imageURL,
		Attributes: []Attribute{
			{TraitType: "location", Value: s.location.String()},
			{TraitType: "timestamp", Value: strconv.FormatInt(s.timestamp, 10)},
		},
	}
	cid, err := o.Publisher.PinJSON(ctx, metadata, "metadata")
	if err != nil {
		return s.fail(StagePublishMetadata, err)
	}
	s.metadataCID = cid
	s.metadataURL = o.Gateway.URL(cid)
	s.failure = nil
	s.state = StateMetadataPublished
	slog.Debug("minter: metadata published", "cid", cid)
	return nil
}

// RequestVoucher asks the issuance service to sign (recipient,
// metadata URL). Both content identifiers must exist by now; the state
// machine guarantees it.
func (o *Orchestrator) RequestVoucher(ctx context.Context, s *Session, recipient common.Address) error {
	if !s.at(StateMetadataPublished, StageVoucher) {
		return fmt.Errorf("cannot request voucher in state %s", s.state)
	}
	v, signature, err := o.Issuer.IssueVoucher(ctx, recipient, s.metadataURL)
	if err != nil {
		return s.fail(StageVoucher, err)
	}
	s.voucher = &v
	s.signature = signature
	s.failure = nil
	s.state = StateVoucherIssued
	slog.Debug("minter: voucher issued", "recipient", recipient, "uri", v.URI)
	return nil
}

// Submit sends the redemption transaction. The transaction handle is
// recorded as soon as submission succeeds, before inclusion.
func (o *Orchestrator) Submit(ctx context.Context, s *Session) error {
	if !s.at(StateVoucherIssued, StageSubmit) {
		return fmt.Errorf("cannot submit in state %s", s.state)
	}
	if s.voucher == nil || len(s.signature) == 0 {
		return s.fail(StageSubmit, fmt.Errorf("missing voucher or signature"))
	}
	pending, err := o.Redeemer.Redeem(ctx, *s.voucher, s.signature)
	if err != nil {
		return s.fail(StageSubmit, &SubmissionError{Err: err})
	}
	s.pending = pending
	s.txHash = pending.Hash()
	s.failure = nil
	s.state = StateSubmitted
	slog.Info("minter: redemption submitted", "tx", s.txHash)
	return nil
}

// AwaitConfirmation blocks until the chain reports the transaction or
// ctx is cancelled. Cancellation leaves the session in StateSubmitted
// with no residual background effect; the wait can be resumed. A
// reverted receipt is the one place a double-spent voucher surfaces.
func (o *Orchestrator) AwaitConfirmation(ctx context.Context, s *Session) error {
	if !s.at(StateSubmitted, StageConfirm) {
		return fmt.Errorf("cannot await confirmation in state %s", s.state)
	}
	receipt, err := s.pending.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return s.fail(StageConfirm, &ConfirmError{Err: err})
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return s.fail(StageConfirm, &ConfirmError{Reverted: true})
	}
	s.failure = nil
	s.state = StateConfirmed
	slog.Info("minter: redemption confirmed", "tx", s.txHash, "block", receipt.BlockNumber)
	return nil
}

// Run drives a captured session through to confirmation.
func (o *Orchestrator) Run(ctx context.Context, s *Session, recipient common.Address) error {
	if err := o.PublishImage(ctx, s); err != nil {
		return err
	}
	if err := o.PublishMetadata(ctx, s); err != nil {
		return err
	}
	if err := o.RequestVoucher(ctx, s, recipient); err != nil {
		return err
	}
	if err := o.Submit(ctx, s); err != nil {
		return err
	}
	return o.AwaitConfirmation(ctx, s)
}

// locate waits for the locator at most LocationTimeout and falls back
// to FallbackLocation. The select guards the bound even against a
// locator that ignores its context.
func (o *Orchestrator) locate(ctx context.Context) Location {
	if o.Locator == nil {
		return FallbackLocation
	}
	timeout := o.LocationTimeout
	if timeout == 0 {
		timeout = DefaultLocationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		loc Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := o.Locator.Current(ctx)
		done <- result{loc, err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			slog.Warn("minter: cannot get location, using fallback", "err", r.err)
			return FallbackLocation
		}
		return r.loc
	case <-ctx.Done():
		slog.Warn("minter: location timed out, using fallback")
		return FallbackLocation
	}
}
