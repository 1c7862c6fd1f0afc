// Constants for the local development network.
package devnet

// Default endpoint for the local Ethereum node.
const (
	AnvilDefaultAddress = "127.0.0.1"
	AnvilDefaultPort    = 8545
)

// Foundry test mnemonic.
const TestMnemonic = "test test test test test test test test test test test junk"

// Account that sends the transactions.
const SenderAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// Private key of the sender.
const SenderPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// Gas limit when sending transactions.
const GasLimit = 30_000_000
