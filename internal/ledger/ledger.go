// Package ledger queries the payment contract that records which addresses have
// purchased which products.
//
// The contract is reached through a JSON-RPC endpoint with a read-only eth_call of
// hasPurchased(address,uint256). No transaction is ever signed or sent.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"github.com/allisson/assetvault/internal/errors"
)

const (
	hasPurchasedMethod    = "hasPurchased"
	hasPurchasedSignature = "hasPurchased(address,uint256)"

	paymentABI = `[{
		"type": "function",
		"name": "hasPurchased",
		"stateMutability": "view",
		"inputs": [
			{"name": "buyer", "type": "address"},
			{"name": "productId", "type": "uint256"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	}]`
)

var (
	// ErrInvalidArgument indicates an address or product id that cannot be ABI-encoded.
	ErrInvalidArgument = errors.Wrap(errors.ErrInvalidInput, "invalid ledger call argument")

	// ErrCallFailed indicates the ledger could not answer the query.
	ErrCallFailed = errors.Wrap(errors.ErrUnavailable, "ledger call failed")
)

// Config configures a Client.
type Config struct {
	RPCURL          string
	ContractAddress string
	// RateLimit is the maximum number of calls per second; zero disables pacing.
	RateLimit float64
	Burst     int
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// contractCaller is the subset of *ethclient.Client the ledger uses.
type contractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

// Client performs read-only calls against the payment contract.
type Client struct {
	caller   contractCaller
	contract common.Address
	abi      abi.ABI
	limiter  *rate.Limiter
}

// NewClient validates cfg and returns a Client. HTTP endpoints are not contacted
// until the first call.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ledger rpc url is required")
	}
	if !isAddress(cfg.ContractAddress) {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ledger contract address is invalid")
	}

	parsed, err := abi.JSON(strings.NewReader(paymentABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment contract abi: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	rpcClient, err := rpc.DialOptions(context.Background(), cfg.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger rpc client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	return &Client{
		caller:   ethclient.NewClient(rpcClient),
		contract: common.HexToAddress(cfg.ContractAddress),
		abi:      parsed,
		limiter:  limiter,
	}, nil
}

// HasPaid reports whether address has purchased productID. productID is a decimal
// uint256.
func (c *Client) HasPaid(ctx context.Context, address, productID string) (bool, error) {
	data, err := c.packHasPurchased(address, productID)
	if err != nil {
		return false, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}

	// A nil block number queries the latest block.
	out, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCallFailed, err)
	}

	values, err := c.abi.Unpack(hasPurchasedMethod, out)
	if err != nil {
		return false, fmt.Errorf("%w: decode result: %v", ErrCallFailed, err)
	}
	paid, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("%w: unexpected result type %T", ErrCallFailed, values[0])
	}
	return paid, nil
}

// Close releases the underlying RPC client.
func (c *Client) Close() {
	c.caller.Close()
}

func (c *Client) packHasPurchased(address, productID string) ([]byte, error) {
	if !isAddress(address) {
		return nil, fmt.Errorf("%w: address %q", ErrInvalidArgument, address)
	}
	product, ok := new(big.Int).SetString(productID, 10)
	if !ok || product.Sign() < 0 || product.BitLen() > 256 {
		return nil, fmt.Errorf("%w: product id %q", ErrInvalidArgument, productID)
	}

	data, err := c.abi.Pack(hasPurchasedMethod, common.HexToAddress(address), product)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return data, nil
}

// isAddress accepts 0x-prefixed 20-byte hex addresses in any case.
func isAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}
