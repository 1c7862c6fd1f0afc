package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/commons"
	"github.com/bitstamp-labs/bitstamp/internal/devnet"
	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
)

const TestTimeout = 5 * time.Second

//
// Fakes
//

type readerMock struct {
	uris   map[string]string
	owners map[string]common.Address
}

func (r *readerMock) TokenURI(opts *bind.CallOpts, tokenId *big.Int) (string, error) {
	uri, ok := r.uris[tokenId.String()]
	if !ok {
		return "", fmt.Errorf("execution reverted: nonexistent token")
	}
	return uri, nil
}

func (r *readerMock) OwnerOf(opts *bind.CallOpts, tokenId *big.Int) (common.Address, error) {
	owner, ok := r.owners[tokenId.String()]
	if !ok {
		return common.Address{}, fmt.Errorf("execution reverted: nonexistent token")
	}
	return owner, nil
}

//
// Test Suite
//

type ViewerSuite struct {
	suite.Suite
	ctx     context.Context
	cancel  context.CancelFunc
	server  *httptest.Server
	reader  *readerMock
	viewer  *Viewer
	gateway pinner.Gateway
}

func (s *ViewerSuite) SetupTest() {
	commons.ConfigureLog(slog.LevelDebug)
	s.ctx, s.cancel = context.WithTimeout(context.Background(), TestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/ipfs/QmMeta", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"name": "BitstampNFT #1700000000",
			"description": "Captured @ Tue, 14 Nov 2023 22:13:20 UTC",
			"image": "ipfs://QmImage",
			"attributes": [
				{"trait_type": "Location", "value": "-23.55,-46.63"},
				{"name": "timestamp", "val": "1700000000"}
			]
		}`)
	})
	mux.HandleFunc("/ipfs/QmBroken", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})
	s.server = httptest.NewServer(mux)

	s.gateway = pinner.NewGateway(s.server.URL + "/ipfs")
	s.reader = &readerMock{
		uris: map[string]string{
			"1": "ipfs://QmMeta",
			"2": "ipfs://QmBroken",
		},
		owners: map[string]common.Address{
			"1": common.HexToAddress(devnet.SenderAddress),
		},
	}
	s.viewer = NewViewer(s.reader, s.gateway)
}

func (s *ViewerSuite) TearDownTest() {
	s.server.Close()
	s.cancel()
}

func TestViewerSuite(t *testing.T) {
	suite.Run(t, new(ViewerSuite))
}

func (s *ViewerSuite) TestDetail() {
	detail, err := s.viewer.Detail(s.ctx, big.NewInt(1))
	s.NoError(err)
	s.Equal("ipfs://QmMeta", detail.URI)
	s.Equal("BitstampNFT #1700000000", detail.Name)
	s.Equal(common.HexToAddress(devnet.SenderAddress), detail.Owner)

	// ipfs locators come back in gateway form.
	s.Equal(s.gateway.URL("QmImage"), detail.Image)

	// Attribute lookup is tolerant: mixed case trait names and both
	// key spellings.
	s.Equal("-23.55,-46.63", detail.Location)
	s.Equal("1700000000", detail.Timestamp)
	captured, ok := detail.Time()
	s.True(ok)
	s.Equal(int64(1700000000), captured.Unix())
}

func (s *ViewerSuite) TestDetailNonexistentToken() {
	_, err := s.viewer.Detail(s.ctx, big.NewInt(99))
	s.ErrorContains(err, "nonexistent token")
}

func (s *ViewerSuite) TestDetailInvalidMetadata() {
	_, err := s.viewer.Detail(s.ctx, big.NewInt(2))
	s.ErrorContains(err, "invalid json")
}

func (s *ViewerSuite) TestOwnerLookupIsBestEffort() {
	// Token 2 has valid metadata but no owner entry.
	s.reader.uris["2"] = "ipfs://QmMeta"
	detail, err := s.viewer.Detail(s.ctx, big.NewInt(2))
	s.NoError(err)
	s.Equal(common.Address{}, detail.Owner)
	s.Equal("BitstampNFT #1700000000", detail.Name)
}

func (s *ViewerSuite) TestMapEmbedURL() {
	detail := &Detail{Location: "-23.55, -46.63"}
	embedURL, ok := detail.MapEmbedURL()
	s.True(ok)
	s.Equal("https://maps.google.com/maps?q=-23.55,-46.63&z=13&output=embed", embedURL)

	detail.Location = ""
	_, ok = detail.MapEmbedURL()
	s.False(ok)
}

func (s *ViewerSuite) TestEmbedSnippet() {
	detail := &Detail{
		TokenID: big.NewInt(7),
		Image:   "https://gateway.pinata.cloud/ipfs/QmImage",
	}
	snippet := detail.EmbedSnippet("https://bitstamp.example/")
	s.Contains(snippet, `href="https://bitstamp.example/view/7"`)
	s.Contains(snippet, `src="https://gateway.pinata.cloud/ipfs/QmImage"`)
	s.Contains(snippet, `alt="NFT #7"`)
}
