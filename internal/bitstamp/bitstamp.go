// This package contains the bitstamp run function.
// This is separate from the main package to facilitate testing.
package bitstamp

import (
	"fmt"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/issuer"
	"github.com/bitstamp-labs/bitstamp/internal/minter"
	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/bitstamp-labs/bitstamp/internal/supervisor"
	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const DefaultHttpPort = 8787
const HttpTimeout = 10 * time.Second

// Options to the bitstamp service.
type BitstampOpts struct {
	HttpAddress string
	HttpPort    int

	// EIP-712 domain bindings.
	ChainID         int64
	ContractAddress string

	// Ethereum node used by the chain-facing commands.
	RpcUrl string

	// Issuing key. Mnemonic is used when PrivateKey is empty.
	PrivateKey string
	Mnemonic   string

	// Pinata credentials.
	PinataBaseURL string
	PinataAPIKey  string
	PinataSecret  string

	// Public gateway where pinned content is served.
	GatewayBase string

	LocationTimeout time.Duration
}

// Create the options struct with default values.
func NewBitstampOpts() BitstampOpts {
	return BitstampOpts{
		HttpAddress:     "127.0.0.1",
		HttpPort:        DefaultHttpPort,
		ChainID:         31337,
		ContractAddress: "",
		RpcUrl:          "http://localhost:8545",
		PrivateKey:      "",
		Mnemonic:        "",
		PinataBaseURL:   pinner.DefaultBaseURL,
		PinataAPIKey:    "",
		PinataSecret:    "",
		GatewayBase:     pinner.DefaultGatewayBase,
		LocationTimeout: minter.DefaultLocationTimeout,
	}
}

// NewSigner builds the voucher signer from the configured key material.
func NewSigner(opts BitstampOpts) (*voucher.Signer, error) {
	domain := voucher.NewDomain(opts.ChainID, common.HexToAddress(opts.ContractAddress))
	if opts.PrivateKey != "" {
		return voucher.NewSignerFromHex(opts.PrivateKey, domain)
	}
	if opts.Mnemonic != "" {
		return voucher.NewSignerFromMnemonic(opts.Mnemonic, domain)
	}
	return nil, fmt.Errorf("bitstamp: neither private key nor mnemonic configured")
}

// Create the bitstamp supervisor.
func NewSupervisor(opts BitstampOpts) (supervisor.SupervisorWorker, error) {
	var w supervisor.SupervisorWorker
	w.Name = "bitstamp"

	signer, err := NewSigner(opts)
	if err != nil {
		return w, err
	}
	service := issuer.NewService(signer)
	publisher := pinner.NewClient(opts.PinataBaseURL, opts.PinataAPIKey, opts.PinataSecret)

	e := echo.New()
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		ErrorMessage: "Request timed out",
		Timeout:      HttpTimeout,
	}))
	issuer.Register(e, service, publisher)

	w.Workers = append(w.Workers, supervisor.HttpWorker{
		Address: fmt.Sprintf("%v:%v", opts.HttpAddress, opts.HttpPort),
		Handler: e,
	})
	return w, nil
}
