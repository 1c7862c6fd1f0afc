// This package contains the main function that executes the bitstamp command.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bitstamp-labs/bitstamp/internal/bitstamp"
	"github.com/bitstamp-labs/bitstamp/internal/contracts"
	"github.com/bitstamp-labs/bitstamp/internal/issuer"
	"github.com/bitstamp-labs/bitstamp/internal/minter"
	"github.com/bitstamp-labs/bitstamp/internal/pinner"
	"github.com/bitstamp-labs/bitstamp/internal/viewer"
	"github.com/bitstamp-labs/bitstamp/internal/voucher"
	"github.com/carlmjohnson/versioninfo"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var startupMessage = `
Voucher issuance API started at http://localhost:HTTP_PORT
POST /voucher to get a signed lazy-minting voucher
Press Ctrl+C to stop the service
`

var cmd = &cobra.Command{
	Use:     "bitstamp",
	Short:   "bitstamp issues signed lazy-minting vouchers and publishes captures to IPFS",
	Run:     run,
	Version: versioninfo.Short(),
}

var CompletionCmd = &cobra.Command{
	Use:                   "completion",
	Short:                 "Generate shell completion scripts",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			cobra.CheckErr(cmd.Root().GenBashCompletion(os.Stdout))
		case "zsh":
			cobra.CheckErr(cmd.Root().GenZshCompletion(os.Stdout))
		case "fish":
			cobra.CheckErr(cmd.Root().GenFishCompletion(os.Stdout, true))
		case "powershell":
			cobra.CheckErr(cmd.Root().GenPowerShellCompletion(os.Stdout))
		}
	},
}

var (
	debug bool
	color bool
	opts  = bitstamp.NewBitstampOpts()
)

// Options for the mint pipeline command.
type MintOpts struct {
	ImagePath string
	Caption   string
	Recipient string
	ServerUrl string
	RpcUrl    string
	Contract  string
	Key       string
	Lat       float64
	Lng       float64
	HasCoords bool
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Capture an image, publish it and redeem the voucher on-chain",
}

var voucherCmd = &cobra.Command{
	Use:   "voucher",
	Short: "Sign and verify lazy-minting vouchers",
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show a minted token",
}

var tipCmd = &cobra.Command{
	Use:   "tip",
	Short: "Tip the owner of a minted token",
}

func markFlagRequired(cmd *cobra.Command, flagNames ...string) {
	for _, flagName := range flagNames {
		err := cmd.MarkFlagRequired(flagName)
		cobra.CheckErr(err)
	}
}

// fixedLocator reports coordinates given on the command line.
type fixedLocator struct {
	location minter.Location
}

func (l fixedLocator) Current(ctx context.Context) (minter.Location, error) {
	return l.location, nil
}

func addMintSubcommand(root *cobra.Command) {
	mint := &MintOpts{}
	mintCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		image, err := os.ReadFile(mint.ImagePath)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if !common.IsHexAddress(mint.Recipient) {
			return fmt.Errorf("invalid recipient address %q", mint.Recipient)
		}

		client, err := ethclient.DialContext(ctx, mint.RpcUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to %v: %w", mint.RpcUrl, err)
		}
		defer client.Close()
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return err
		}
		key, err := crypto.HexToECDSA(trimHexPrefix(mint.Key))
		if err != nil {
			return fmt.Errorf("failed to parse private key: %w", err)
		}
		txOpts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return err
		}
		redeemer, err := minter.NewChainRedeemer(client, common.HexToAddress(mint.Contract), txOpts)
		if err != nil {
			return err
		}

		issuerClient := issuer.NewClient(mint.ServerUrl)
		orchestrator := &minter.Orchestrator{
			Publisher: issuerClient,
			Issuer:    issuerClient,
			Redeemer:  redeemer,
			Gateway:   pinner.NewGateway(opts.GatewayBase),
		}
		if mint.HasCoords {
			orchestrator.Locator = fixedLocator{minter.Location{Lat: mint.Lat, Lng: mint.Lng}}
		}

		session := orchestrator.NewSession()
		if err := orchestrator.Capture(session, image, mint.Caption); err != nil {
			return err
		}
		if err := orchestrator.Run(ctx, session, common.HexToAddress(mint.Recipient)); err != nil {
			return err
		}
		fmt.Printf("metadata: %v\n", session.MetadataURL())
		fmt.Printf("tx:       %v\n", session.TxHash())
		return nil
	}
	mintCmd.Flags().StringVar(&mint.ImagePath, "image", "", "Image file to mint")
	mintCmd.Flags().StringVar(&mint.Caption, "caption", "", "Caption stored in the token metadata")
	mintCmd.Flags().StringVar(&mint.Recipient, "recipient", "", "Address that receives the token")
	mintCmd.Flags().StringVar(&mint.ServerUrl, "server-url", fmt.Sprintf("http://127.0.0.1:%v", bitstamp.DefaultHttpPort),
		"Voucher issuance service url")
	mintCmd.Flags().StringVar(&mint.RpcUrl, "rpc-url", opts.RpcUrl, "Ethereum node url")
	mintCmd.Flags().StringVar(&mint.Contract, "contract-address", "", "NFT contract address")
	mintCmd.Flags().StringVar(&mint.Key, "private-key", "", "Key that pays for the redemption")
	mintCmd.Flags().Float64Var(&mint.Lat, "lat", 0, "Latitude stored in the token metadata")
	mintCmd.Flags().Float64Var(&mint.Lng, "lng", 0, "Longitude stored in the token metadata")
	markFlagRequired(mintCmd, "image", "recipient", "contract-address", "private-key")
	mintCmd.PreRun = func(cmd *cobra.Command, args []string) {
		mint.HasCoords = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng")
	}
	root.AddCommand(mintCmd)
}

func addVoucherSubcommands(voucherCmd *cobra.Command) {
	var (
		recipient string
		uri       string
		signature string
	)
	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a voucher with the configured key",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := bitstamp.NewSigner(opts)
			if err != nil {
				return err
			}
			service := issuer.NewService(signer)
			v, sig, err := service.IssueVoucher(recipient, uri)
			if err != nil {
				return err
			}
			fmt.Printf("recipient: %v\n", v.Recipient.Hex())
			fmt.Printf("uri:       %v\n", v.URI)
			fmt.Printf("signature: %v\n", hexutil.Encode(sig))
			return nil
		},
	}
	signCmd.Flags().StringVar(&recipient, "recipient", "", "Address that may redeem the voucher")
	signCmd.Flags().StringVar(&uri, "uri", "", "Metadata uri bound to the voucher")
	markFlagRequired(signCmd, "recipient", "uri")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Recover the signer of a voucher",
		RunE: func(cmd *cobra.Command, args []string) error {
			sig, err := hexutil.Decode(signature)
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}
			domain := voucher.NewDomain(opts.ChainID, common.HexToAddress(opts.ContractAddress))
			v := voucher.Voucher{
				Recipient: common.HexToAddress(recipient),
				URI:       uri,
			}
			signer, err := voucher.RecoverSigner(domain, v, sig)
			if err != nil {
				return err
			}
			fmt.Printf("signer: %v\n", signer.Hex())
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&recipient, "recipient", "", "Address bound to the voucher")
	verifyCmd.Flags().StringVar(&uri, "uri", "", "Metadata uri bound to the voucher")
	verifyCmd.Flags().StringVar(&signature, "signature", "", "Voucher signature in hex")
	markFlagRequired(verifyCmd, "recipient", "uri", "signature")

	voucherCmd.AddCommand(signCmd, verifyCmd)
}

func addViewSubcommand(root *cobra.Command) {
	var (
		rpcUrl   string
		contract string
		tokenID  string
	)
	viewCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, ok := new(big.Int).SetString(tokenID, 10)
		if !ok {
			return fmt.Errorf("invalid token id %q", tokenID)
		}
		client, err := ethclient.DialContext(ctx, rpcUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to %v: %w", rpcUrl, err)
		}
		defer client.Close()
		nft, err := contracts.NewBitstampNFT(common.HexToAddress(contract), client)
		if err != nil {
			return err
		}
		v := viewer.NewViewer(nft, pinner.NewGateway(opts.GatewayBase))
		detail, err := v.Detail(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("token:     %v\n", detail.TokenID)
		fmt.Printf("owner:     %v\n", detail.Owner.Hex())
		fmt.Printf("name:      %v\n", detail.Name)
		fmt.Printf("image:     %v\n", detail.Image)
		if captured, ok := detail.Time(); ok {
			fmt.Printf("captured:  %v\n", captured.Format(time.RFC1123))
		}
		fmt.Printf("location:  %v\n", detail.Location)
		return nil
	}
	viewCmd.Flags().StringVar(&rpcUrl, "rpc-url", opts.RpcUrl, "Ethereum node url")
	viewCmd.Flags().StringVar(&contract, "contract-address", "", "NFT contract address")
	viewCmd.Flags().StringVar(&tokenID, "token-id", "", "Token to show")
	markFlagRequired(viewCmd, "contract-address", "token-id")
	root.AddCommand(viewCmd)
}

func addTipSubcommand(root *cobra.Command) {
	var (
		rpcUrl   string
		contract string
		tokenID  string
		key      string
		amount   string
	)
	tipCmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, ok := new(big.Int).SetString(tokenID, 10)
		if !ok {
			return fmt.Errorf("invalid token id %q", tokenID)
		}
		amountWei, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			return fmt.Errorf("invalid amount %q", amount)
		}
		client, err := ethclient.DialContext(ctx, rpcUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to %v: %w", rpcUrl, err)
		}
		defer client.Close()
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return err
		}
		privateKey, err := crypto.HexToECDSA(trimHexPrefix(key))
		if err != nil {
			return fmt.Errorf("failed to parse private key: %w", err)
		}
		nft, err := contracts.NewBitstampNFT(common.HexToAddress(contract), client)
		if err != nil {
			return err
		}
		v := viewer.NewViewer(nft, pinner.NewGateway(opts.GatewayBase))
		tipper := viewer.NewTipper(client, privateKey, chainID)
		hash, err := v.TipOwner(ctx, tipper, id, amountWei)
		if err != nil {
			return err
		}
		fmt.Printf("tx: %v\n", hash)
		return nil
	}
	tipCmd.Flags().StringVar(&rpcUrl, "rpc-url", opts.RpcUrl, "Ethereum node url")
	tipCmd.Flags().StringVar(&contract, "contract-address", "", "NFT contract address")
	tipCmd.Flags().StringVar(&tokenID, "token-id", "", "Token whose owner receives the tip")
	tipCmd.Flags().StringVar(&key, "private-key", "", "Key that pays the tip")
	tipCmd.Flags().StringVar(&amount, "amount-wei", "", "Tip amount in wei")
	markFlagRequired(tipCmd, "contract-address", "token-id", "private-key", "amount-wei")
	root.AddCommand(tipCmd)
}

func init() {
	// enable-*
	cmd.PersistentFlags().BoolVarP(&debug, "enable-debug", "d", false, "If set, enable debug output")
	cmd.PersistentFlags().BoolVar(&color, "enable-color", true, "If set, enables logs color")

	// http-*
	cmd.Flags().StringVar(&opts.HttpAddress, "http-address", opts.HttpAddress,
		"HTTP address used to serve the issuance API")
	cmd.Flags().IntVar(&opts.HttpPort, "http-port", opts.HttpPort,
		"HTTP port used to serve the issuance API")

	// contracts-*
	cmd.PersistentFlags().Int64Var(&opts.ChainID, "chain-id", opts.ChainID,
		"Chain ID bound into the voucher domain")
	cmd.PersistentFlags().StringVar(&opts.ContractAddress, "contract-address", opts.ContractAddress,
		"NFT contract address bound into the voucher domain")

	// key material
	cmd.PersistentFlags().StringVar(&opts.PrivateKey, "private-key", opts.PrivateKey,
		"Issuing key in hex; defaults to the BACKEND_PRIVATE_KEY env var")
	cmd.PersistentFlags().StringVar(&opts.Mnemonic, "mnemonic", opts.Mnemonic,
		"Mnemonic used to derive the issuing key when no private key is set")

	// pinata-*
	cmd.Flags().StringVar(&opts.PinataBaseURL, "pinata-url", opts.PinataBaseURL,
		"Pinata API base url")
	cmd.Flags().StringVar(&opts.PinataAPIKey, "pinata-api-key", opts.PinataAPIKey,
		"Pinata API key; defaults to the PINATA_API_KEY env var")
	cmd.Flags().StringVar(&opts.PinataSecret, "pinata-secret", opts.PinataSecret,
		"Pinata API secret; defaults to the PINATA_SECRET_API_KEY env var")

	cmd.PersistentFlags().StringVar(&opts.GatewayBase, "gateway-base", opts.GatewayBase,
		"Gateway prefix used to serve pinned content")
}

func run(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	startTime := time.Now()

	// check args
	checkEthAddress(cmd, "contract-address")
	if opts.HttpPort == 0 {
		exitf("--http-port cannot be 0")
	}

	// handle signals with notify context
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// start the service
	ready := make(chan struct{}, 1)
	go func() {
		select {
		case <-ready:
			msg := strings.Replace(
				startupMessage,
				"HTTP_PORT",
				fmt.Sprint(opts.HttpPort), -1)
			fmt.Println(msg)
			slog.Info("bitstamp: ready", "after", time.Since(startTime))
		case <-ctx.Done():
		}
	}()
	supervisor, err := bitstamp.NewSupervisor(opts)
	cobra.CheckErr(err)
	cobra.CheckErr(supervisor.Start(ctx, ready))
}

// applyEnvDefaults loads .env and fills options left empty on the
// command line from the environment.
func applyEnvDefaults() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("env: no .env file", "error", err)
	}
	if opts.PinataAPIKey == "" {
		opts.PinataAPIKey = os.Getenv("PINATA_API_KEY")
	}
	if opts.PinataSecret == "" {
		opts.PinataSecret = os.Getenv("PINATA_SECRET_API_KEY")
	}
	if opts.PrivateKey == "" {
		opts.PrivateKey = os.Getenv("BACKEND_PRIVATE_KEY")
	}
	if opts.Mnemonic == "" {
		opts.Mnemonic = os.Getenv("MNEMONIC")
	}
	if opts.ContractAddress == "" {
		opts.ContractAddress = os.Getenv("NFT_CONTRACT_ADDRESS")
	}
	if v := os.Getenv("CHAIN_ID"); v != "" && !cmd.PersistentFlags().Changed("chain-id") {
		chainID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			exitf("invalid CHAIN_ID: %v", err)
		}
		opts.ChainID = chainID
	}
	if v := os.Getenv("PORT"); v != "" && !cmd.Flags().Changed("http-port") {
		port, err := strconv.Atoi(v)
		if err != nil {
			exitf("invalid PORT: %v", err)
		}
		opts.HttpPort = port
	}
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}

func main() {
	// setup log before anything else runs
	cobra.OnInitialize(func() {
		logOpts := new(tint.Options)
		if debug {
			logOpts.Level = slog.LevelDebug
		}
		logOpts.AddSource = debug
		logOpts.NoColor = !color || !isatty.IsTerminal(os.Stdout.Fd())
		logOpts.TimeFormat = "[15:04:05.000]"
		handler := tint.NewHandler(os.Stdout, logOpts)
		logger := slog.New(handler)
		slog.SetDefault(logger)
		applyEnvDefaults()
	})
	addMintSubcommand(cmd)
	addVoucherSubcommands(voucherCmd)
	addViewSubcommand(cmd)
	addTipSubcommand(cmd)
	cmd.AddCommand(voucherCmd, CompletionCmd)
	cobra.CheckErr(cmd.Execute())
}

func exitf(format string, args ...any) {
	err := fmt.Sprintf(format, args...)
	slog.Error("configuration error", "error", err)
	os.Exit(1)
}

func checkEthAddress(cmd *cobra.Command, varName string) {
	if cmd.Flags().Changed(varName) {
		value, err := cmd.Flags().GetString(varName)
		cobra.CheckErr(err)
		bytes, err := hexutil.Decode(value)
		if err != nil {
			exitf("invalid address for --%v: %v", varName, err)
		}
		if len(bytes) != common.AddressLength {
			exitf("invalid address for --%v: wrong length", varName)
		}
	}
}
