// This package drives the capture → publish → voucher → redeem → confirm
// pipeline as an explicit finite-state machine over a session. One
// authoritative state field, no coupling to any rendering layer.
package minter

import (
	"fmt"

	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/common"
)

type State string

const (
	StateIdle              State = "idle"
	StateCaptured          State = "captured"
	StateImagePublished    State = "image-published"
	StateMetadataPublished State = "metadata-published"
	StateVoucherIssued     State = "voucher-issued"
	StateSubmitted         State = "submitted"
	StateConfirmed         State = "confirmed"
	StateFailed            State = "failed"
)

// Stage labels where in the pipeline a failure happened.
type Stage string

const (
	StageCapture         Stage = "capture"
	StagePublishImage    Stage = "publish-image"
	StagePublishMetadata Stage = "publish-metadata"
	StageVoucher         Stage = "voucher"
	StageSubmit          Stage = "submit"
	StageConfirm         Stage = "confirm"
)

// Failure records where the pipeline stopped and why. Everything
// gathered before the failure stays on the session, so a retry resumes
// from the last successful stage instead of restarting.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Location is a device position in degrees.
type Location struct {
	Lat float64
	Lng float64
}

// FallbackLocation is substituted when geolocation is unavailable or
// times out. Geolocation is advisory, never a pipeline failure.
var FallbackLocation = Location{0, 0}

func (l Location) String() string {
	return fmt.Sprintf("%v,%v", l.Lat, l.Lng)
}

// Session is the state of one mint attempt. Sessions are independent:
// nothing survives them and nothing is shared between them.
type Session struct {
	state   State
	failure *Failure

	rawImage  []byte
	fileName  string
	caption   string
	timestamp int64
	location  *Location

	imageCID    string
	imageURL    string
	metadataCID string
	metadataURL string

	voucher   *voucher.Voucher
	signature []byte

	txHash  common.Hash
	pending PendingTx
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Failure() *Failure {
	return s.failure
}

func (s *Session) Timestamp() int64 {
	return s.timestamp
}

func (s *Session) Location() *Location {
	return s.location
}

func (s *Session) ImageCID() string {
	return s.imageCID
}

func (s *Session) ImageURL() string {
	return s.imageURL
}

func (s *Session) MetadataCID() string {
	return s.metadataCID
}

func (s *Session) MetadataURL() string {
	return s.metadataURL
}

func (s *Session) Voucher() *voucher.Voucher {
	return s.voucher
}

func (s *Session) Signature() []byte {
	return s.signature
}

// TxHash is the pending transaction handle, available as soon as the
// session reaches StateSubmitted, before inclusion.
func (s *Session) TxHash() common.Hash {
	return s.txHash
}

// at reports whether the session may run the stage guarded by prev:
// either it sits at prev, or it failed at exactly this stage and is
// being retried.
func (s *Session) at(prev State, stage Stage) bool {
	if s.state == prev {
		return true
	}
	return s.state == StateFailed && s.failure != nil && s.failure.Stage == stage
}

func (s *Session) fail(stage Stage, err error) error {
	s.failure = &Failure{Stage: stage, Err: err}
	s.state = StateFailed
	return s.failure
}
