package classifier

import "regexp"

// Registry is the full rule set used to decide whether an instrument is
// noise. It is plain data so the rule order and contents are reviewable
// and overridable in tests; DefaultRegistry returns the production set.
type Registry struct {
	// Exempt IDs are never excluded regardless of any other rule.
	Exempt map[string]struct{}

	// Stable-value rules.
	StableIDs      map[string]struct{}
	StableNameRe   *regexp.Regexp
	StableSymbolRe *regexp.Regexp
	StableBandLow  float64
	StableBandHigh float64

	// Wrapped/derivative rules.
	WrappedIDs map[string]struct{}
	WrappedRes []*regexp.Regexp
}

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// DefaultRegistry returns the production noise registry: the two dominant
// base assets are exempt, known stable and wrapped assets are listed by
// quote-source ID or ticker, and pattern rules catch the long tail of
// pegged, bridged and staking-derivative listings.
func DefaultRegistry() *Registry {
	return &Registry{
		Exempt: set("bitcoin", "ethereum"),

		StableIDs: set(
			"tether", "usdt", "usd-coin", "usdc", "dai", "binance-usd", "busd",
			"frax", "paxos-standard", "usdp", "true-usd", "tusd", "gemini-dollar", "gusd",
			"first-digital-usd", "fdusd", "usdd", "paypal-usd", "pyusd", "ethena-usde", "usde",
			"stasis-euro", "eurs", "susde", "origin-dollar", "ousd", "flex-usd", "susd",
			"liquity-usd", "lusd", "usdx", "terrausd", "ust", "pax-gold", "paxg",
			"tether-gold", "xaut", "digix-gold", "dgx", "celo-dollar", "cusd",
			"stably-usd", "usds", "usdt0", "usd0", "honey",
			"blackrock-usd-institutional-digital-liquidity-fund", "buidl",
			"resolv-usr", "usr", "bridged-usdc-polygon-pos-bridge", "usdc.e",
			"sonic-bridged-usdc-e-sonic", "binance-bridged-usdt-bnb-smart-chain", "bsc-usd",
			"nusd", "musd", "xsgd", "ceur", "ageur", "seur", "gbpt", "mimatic", "mai",
			"jpusd", "jpeur", "jpgbp", "frax-ether", "alusd", "ibeur", "par", "usdk",
			"usdj", "dusd", "vai", "flexusd", "zusd", "rsv", "tsd", "usdq", "usdl",
			"usdap", "usdct", "usdterc20", "usdttrc20", "usdcerc20", "usdctrc20",
			"usdcbep20", "usdtbep20", "usdtsol", "usdcsol", "usdtspl", "usdcspl",
			"usdtbsc", "usdcbsc", "usdtpolygon", "usdcpolygon", "usdtavax", "usdcavax",
			"usdtarb", "usdcarb", "usdtcro", "usdccro", "usdtron", "usdctron",
			"usdtsolana", "usdcsolana", "usdtavalanche", "usdcavalanche",
			"usdtfantom", "usdcfantom", "usdtcelo", "usdccelo", "usdtnear", "usdcnear",
		),
		StableNameRe:   regexp.MustCompile(`(?i)(usd|stable|peg|fiat|tokenized|cash|coin)`),
		StableSymbolRe: regexp.MustCompile(`(?i)(usd|stable|peg|fiat)`),
		StableBandLow:  0.9,
		StableBandHigh: 1.1,

		WrappedIDs: set(
			"solv-btc", "solvbtc", "solvbtc.bbn", "wrapped-bitcoin", "wbtc",
			"wrapped-ether", "weth", "staked-ether", "steth", "rocket-pool-eth", "reth",
			"ankreth", "ankr-staked-eth", "cbeth", "coinbase-wrapped-staked-eth",
			"lido-staked-ether", "staked-usdt", "stusdt",
		),
		WrappedRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^wrapped\s`),
			regexp.MustCompile(`(?i)^w[\w-]{2,}$`),
			regexp.MustCompile(`(?i)^(erc|bep|hrc|prc|trc|arb|opt|ftm)\d*`),
			regexp.MustCompile(`(?i)peg(g?ed)?`),
			regexp.MustCompile(`(?i)bridge(d)?`),
			regexp.MustCompile(`(?i)cross-?chain`),
			regexp.MustCompile(`(?i)wormhole`),
			regexp.MustCompile(`(?i)multichain`),
			regexp.MustCompile(`(?i)allbridge`),
			regexp.MustCompile(`(?i)axelar`),
			regexp.MustCompile(`(?i)anytoken`),
			regexp.MustCompile(`(?i)^w\w{3,}$`),
			regexp.MustCompile(`(?i)\.(eth|btc)$`),
			regexp.MustCompile(`(?i)^(h|p|f|a)w\w+`),
			regexp.MustCompile(`(?i)staked`),
			regexp.MustCompile(`(?i)stake`),
			regexp.MustCompile(`(?i)liquid`),
		},
	}
}
