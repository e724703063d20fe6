package eth

import "github.com/ethereum/go-ethereum/common"

// Well-known mainnet addresses used by the swap demonstrations.
var (
	WETH  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	USDC  = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	USDT  = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	SUSDS = common.HexToAddress("0xa3931d71877C0E7a3148CB7Eb4463524FEc27fbD")

	// UniswapQuoterV2 quotes exact-input swaps without executing them.
	UniswapQuoterV2 = common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e")

	// Whale accounts impersonated as the externally owned account in the
	// demos, holding enough of the input tokens to make the flows realistic.
	WETHWhale = common.HexToAddress("0x57757E3D981446D585Af0D9Ae4d7DF6D64647806")
	USDTWhale = common.HexToAddress("0x835678a611B28684005a5e2233695fB6cbbB0007")
)
