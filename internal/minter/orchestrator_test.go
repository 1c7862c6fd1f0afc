package minter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/commons"
	"github.com/bitstamp-labs/bitstamp/internal/devnet"
	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/suite"
)

const TestTimeout = 5 * time.Second

const testContract = "0x70ac08179605AF2D9e75782b8DEcDD3c22aA4D0C"

//
// Fakes
//

type publisherMock struct {
	bytesCalls int
	jsonCalls  int
	bytesErr   error
	jsonErr    error
	lastBytes  []byte
	lastJSON   any
}

func (p *publisherMock) PinBytes(ctx context.Context, data []byte, name string) (string, error) {
	p.bytesCalls++
	if p.bytesErr != nil {
		return "", p.bytesErr
	}
	p.lastBytes = data
	return fmt.Sprintf("QmImage%d", p.bytesCalls), nil
}

func (p *publisherMock) PinJSON(ctx context.Context, v any, name string) (string, error) {
	p.jsonCalls++
	if p.jsonErr != nil {
		return "", p.jsonErr
	}
	p.lastJSON = v
	return fmt.Sprintf("QmMeta%d", p.jsonCalls), nil
}

type issuerMock struct {
	signer  *voucher.Signer
	err     error
	lastURI string
}

func (i *issuerMock) IssueVoucher(ctx context.Context, recipient common.Address, uri string) (voucher.Voucher, []byte, error) {
	if i.err != nil {
		return voucher.Voucher{}, nil, i.err
	}
	i.lastURI = uri
	v := voucher.Voucher{Recipient: recipient, URI: uri}
	signature, err := i.signer.Sign(v)
	return v, signature, err
}

type pendingMock struct {
	hash    common.Hash
	receipt *types.Receipt
	err     error
	block   chan struct{}
}

func (p *pendingMock) Hash() common.Hash {
	return p.hash
}

func (p *pendingMock) Wait(ctx context.Context) (*types.Receipt, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.receipt, p.err
}

type redeemerMock struct {
	calls   int
	err     error
	pending *pendingMock
	lastV   voucher.Voucher
	lastSig []byte
}

func (r *redeemerMock) Redeem(ctx context.Context, v voucher.Voucher, signature []byte) (PendingTx, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	r.lastV = v
	r.lastSig = signature
	return r.pending, nil
}

// blockedLocator never answers, not even to its context.
type blockedLocator struct{}

func (blockedLocator) Current(ctx context.Context) (Location, error) {
	select {}
}

type fixedLocator struct {
	location Location
}

func (l fixedLocator) Current(ctx context.Context) (Location, error) {
	return l.location, nil
}

//
// Test Suite
//

type OrchestratorSuite struct {
	suite.Suite
	ctx          context.Context
	cancel       context.CancelFunc
	publisher    *publisherMock
	issuer       *issuerMock
	redeemer     *redeemerMock
	orchestrator *Orchestrator
	recipient    common.Address
}

func (s *OrchestratorSuite) SetupTest() {
	commons.ConfigureLog(slog.LevelDebug)
	s.ctx, s.cancel = context.WithTimeout(context.Background(), TestTimeout)

	domain := voucher.NewDomain(31337, common.HexToAddress(testContract))
	signer, err := voucher.NewSignerFromMnemonic(devnet.TestMnemonic, domain)
	s.NoError(err)

	s.publisher = &publisherMock{}
	s.issuer = &issuerMock{signer: signer}
	s.redeemer = &redeemerMock{
		pending: &pendingMock{
			hash:    crypto.Keccak256Hash([]byte("tx")),
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful},
		},
	}
	s.orchestrator = &Orchestrator{
		Publisher: s.publisher,
		Issuer:    s.issuer,
		Redeemer:  s.redeemer,
		Gateway:   pinner.NewGateway(""),
	}
	s.recipient = common.HexToAddress(devnet.SenderAddress)
}

func (s *OrchestratorSuite) TearDownTest() {
	s.cancel()
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) capture(session *Session) {
	s.NoError(s.orchestrator.Capture(session, []byte("image-bytes"), "a caption"))
	s.Equal(StateCaptured, session.State())
}

func (s *OrchestratorSuite) TestFullPipeline() {
	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.Run(s.ctx, session, s.recipient))
	s.Equal(StateConfirmed, session.State())
	s.Nil(session.Failure())

	// Image pinned, metadata pinned with the image url inside.
	s.Equal([]byte("image-bytes"), s.publisher.lastBytes)
	metadata, ok := s.publisher.lastJSON.(Metadata)
	s.True(ok)
	s.Equal(session.ImageURL(), metadata.Image)
	s.Equal("a caption", metadata.Description)

	// Voucher signed over the metadata url, redeemed as issued.
	s.Equal(session.MetadataURL(), s.issuer.lastURI)
	s.Equal(session.MetadataURL(), s.redeemer.lastV.URI)
	s.Equal(s.recipient, s.redeemer.lastV.Recipient)
	s.Equal(session.Signature(), s.redeemer.lastSig)
	s.Equal(s.redeemer.pending.hash, session.TxHash())
}

func (s *OrchestratorSuite) TestCaptureEmptyImage() {
	session := s.orchestrator.NewSession()
	err := s.orchestrator.Capture(session, nil, "")
	s.Error(err)
	s.Equal(StateFailed, session.State())
	s.Equal(StageCapture, session.Failure().Stage)
}

func (s *OrchestratorSuite) TestCaptureTwiceRejected() {
	session := s.orchestrator.NewSession()
	s.capture(session)
	s.Error(s.orchestrator.Capture(session, []byte("again"), ""))
}

func (s *OrchestratorSuite) TestImagePublishFailureIsRetriable() {
	session := s.orchestrator.NewSession()
	s.capture(session)

	s.publisher.bytesErr = fmt.Errorf("provider unavailable")
	s.Error(s.orchestrator.PublishImage(s.ctx, session))
	s.Equal(StateFailed, session.State())
	s.Equal(StagePublishImage, session.Failure().Stage)

	s.publisher.bytesErr = nil
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))
	s.Equal(StateImagePublished, session.State())
	s.Nil(session.Failure())
	s.Equal(2, s.publisher.bytesCalls)
}

func (s *OrchestratorSuite) TestMetadataRetryKeepsImage() {
	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))
	imageCID := session.ImageCID()

	s.publisher.jsonErr = fmt.Errorf("provider unavailable")
	s.Error(s.orchestrator.PublishMetadata(s.ctx, session))
	s.Equal(StateFailed, session.State())
	s.Equal(StagePublishMetadata, session.Failure().Stage)
	s.Equal(imageCID, session.ImageCID())

	// The retry pins only the metadata again.
	s.publisher.jsonErr = nil
	s.NoError(s.orchestrator.PublishMetadata(s.ctx, session))
	s.Equal(StateMetadataPublished, session.State())
	s.Equal(1, s.publisher.bytesCalls)
	s.Equal(2, s.publisher.jsonCalls)
	s.Equal(imageCID, session.ImageCID())
}

func (s *OrchestratorSuite) TestLocationTimeoutFallback() {
	s.orchestrator.Locator = blockedLocator{}
	s.orchestrator.LocationTimeout = 50 * time.Millisecond

	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))

	start := time.Now()
	s.NoError(s.orchestrator.PublishMetadata(s.ctx, session))
	s.Less(time.Since(start), time.Second)
	s.Equal(FallbackLocation, *session.Location())

	metadata := s.publisher.lastJSON.(Metadata)
	s.Contains(metadata.Attributes, Attribute{TraitType: "location", Value: "0,0"})
}

func (s *OrchestratorSuite) TestLocatorCoordinates() {
	s.orchestrator.Locator = fixedLocator{Location{Lat: -23.55, Lng: -46.63}}

	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))
	s.NoError(s.orchestrator.PublishMetadata(s.ctx, session))

	metadata := s.publisher.lastJSON.(Metadata)
	s.Contains(metadata.Attributes, Attribute{TraitType: "location", Value: "-23.55,-46.63"})
}

func (s *OrchestratorSuite) TestVoucherFailureIsRetriable() {
	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))
	s.NoError(s.orchestrator.PublishMetadata(s.ctx, session))

	s.issuer.err = fmt.Errorf("service unavailable")
	s.Error(s.orchestrator.RequestVoucher(s.ctx, session, s.recipient))
	s.Equal(StateFailed, session.State())
	s.Equal(StageVoucher, session.Failure().Stage)

	s.issuer.err = nil
	s.NoError(s.orchestrator.RequestVoucher(s.ctx, session, s.recipient))
	s.Equal(StateVoucherIssued, session.State())
}

func (s *OrchestratorSuite) TestSubmissionFailure() {
	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))
	s.NoError(s.orchestrator.PublishMetadata(s.ctx, session))
	s.NoError(s.orchestrator.RequestVoucher(s.ctx, session, s.recipient))

	s.redeemer.err = fmt.Errorf("insufficient funds")
	err := s.orchestrator.Submit(s.ctx, session)
	s.Error(err)
	var submissionErr *SubmissionError
	s.True(errors.As(err, &submissionErr))
	s.Equal(StateFailed, session.State())
	s.Equal(StageSubmit, session.Failure().Stage)
}

func (s *OrchestratorSuite) TestRevertedRedemption() {
	s.redeemer.pending.receipt = &types.Receipt{Status: types.ReceiptStatusFailed}

	session := s.orchestrator.NewSession()
	s.capture(session)
	err := s.orchestrator.Run(s.ctx, session, s.recipient)
	s.Error(err)

	var confirmErr *ConfirmError
	s.True(errors.As(err, &confirmErr))
	s.True(confirmErr.Reverted)
	s.ErrorContains(err, "request a new voucher")
	s.Equal(StateFailed, session.State())
	s.Equal(StageConfirm, session.Failure().Stage)
}

func (s *OrchestratorSuite) TestCancelDuringConfirmationKeepsSubmitted() {
	s.redeemer.pending.block = make(chan struct{})

	session := s.orchestrator.NewSession()
	s.capture(session)
	s.NoError(s.orchestrator.PublishImage(s.ctx, session))
	s.NoError(s.orchestrator.PublishMetadata(s.ctx, session))
	s.NoError(s.orchestrator.RequestVoucher(s.ctx, session, s.recipient))
	s.NoError(s.orchestrator.Submit(s.ctx, session))

	waitCtx, waitCancel := context.WithTimeout(s.ctx, 50*time.Millisecond)
	defer waitCancel()
	err := s.orchestrator.AwaitConfirmation(waitCtx, session)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Equal(StateSubmitted, session.State())
	s.Nil(session.Failure())

	// The wait resumes once the transaction lands.
	close(s.redeemer.pending.block)
	s.NoError(s.orchestrator.AwaitConfirmation(s.ctx, session))
	s.Equal(StateConfirmed, session.State())
}

func (s *OrchestratorSuite) TestSessionsAreIndependent() {
	first := s.orchestrator.NewSession()
	s.capture(first)
	s.NoError(s.orchestrator.Run(s.ctx, first, s.recipient))

	// A second redemption of the same voucher reverts on-chain.
	s.redeemer.pending = &pendingMock{
		hash:    crypto.Keccak256Hash([]byte("tx2")),
		receipt: &types.Receipt{Status: types.ReceiptStatusFailed},
	}
	second := s.orchestrator.NewSession()
	s.capture(second)
	err := s.orchestrator.Run(s.ctx, second, s.recipient)
	s.Error(err)

	s.Equal(StateConfirmed, first.State())
	s.Equal(StateFailed, second.State())
}
