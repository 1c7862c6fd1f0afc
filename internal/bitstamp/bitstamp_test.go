package bitstamp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/commons"
	"github.com/bitstamp-labs/bitstamp/internal/devnet"
	"github.com/stretchr/testify/suite"
)

const TestTimeout = 5 * time.Second

const testContract = "0x70ac08179605AF2D9e75782b8DEcDD3c22aA4D0C"

//
// Test Suite
//

type BitstampSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *BitstampSuite) SetupTest() {
	commons.ConfigureLog(slog.LevelDebug)
	s.ctx, s.cancel = context.WithTimeout(context.Background(), TestTimeout)
}

func (s *BitstampSuite) TearDownTest() {
	s.cancel()
}

func TestBitstampSuite(t *testing.T) {
	suite.Run(t, new(BitstampSuite))
}

func (s *BitstampSuite) TestSignerFromMnemonic() {
	opts := NewBitstampOpts()
	opts.ContractAddress = testContract
	opts.Mnemonic = devnet.TestMnemonic
	signer, err := NewSigner(opts)
	s.NoError(err)
	s.Equal(devnet.SenderAddress, signer.Address().Hex())
}

func (s *BitstampSuite) TestSignerPrefersPrivateKey() {
	opts := NewBitstampOpts()
	opts.ContractAddress = testContract
	opts.PrivateKey = devnet.SenderPrivateKey
	opts.Mnemonic = "not a valid mnemonic"
	signer, err := NewSigner(opts)
	s.NoError(err)
	s.Equal(devnet.SenderAddress, signer.Address().Hex())
}

func (s *BitstampSuite) TestSignerRequiresKeyMaterial() {
	opts := NewBitstampOpts()
	opts.ContractAddress = testContract
	_, err := NewSigner(opts)
	s.ErrorContains(err, "neither private key nor mnemonic")
}

func (s *BitstampSuite) TestSupervisorServesIssuanceAPI() {
	opts := NewBitstampOpts()
	opts.ContractAddress = testContract
	opts.Mnemonic = devnet.TestMnemonic
	opts.HttpPort = s.freePort()

	worker, err := NewSupervisor(opts)
	s.NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	ready := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx, ready)
	}()
	select {
	case <-ready:
	case <-s.ctx.Done():
		s.Fail("timed out waiting for the service")
	}

	url := fmt.Sprintf("http://%v:%v/ping", opts.HttpAddress, opts.HttpPort)
	resp, err := http.Get(url)
	s.NoError(err)
	s.NoError(resp.Body.Close())
	s.Equal(http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-s.ctx.Done():
		s.Fail("timed out waiting for the service to stop")
	}
}

func (s *BitstampSuite) freePort() int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	s.NoError(err)
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}
