// Package params defines chain configuration and the hard-fork registry
// that every other package consults to decide which rules apply to a
// given block (§2, §8).
package params

import "math/big"

// ForkID enumerates the protocol hard forks this core understands, in
// activation order. Frontier through Prague are fully implemented;
// Osaka is provisional: it enables only the CLZ opcode and the EIP-7883
// MODEXP repricing (§8).
type ForkID int

const (
	Frontier ForkID = iota
	Homestead
	TangerineWhistle // EIP-150
	SpuriousDragon   // EIP-155, EIP-160, EIP-161
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	MuirGlacier
	Berlin  // EIP-2718, EIP-2929, EIP-2930
	London  // EIP-1559, EIP-3529, EIP-3541
	ArrowGlacier
	GrayGlacier
	Merge    // EIP-3675, EIP-4399
	Shanghai // EIP-3855, EIP-3860, EIP-4895
	Cancun   // EIP-1153, EIP-4844, EIP-4788, EIP-5656, EIP-6780, EIP-7516
	Prague   // EIP-2537, EIP-2935, EIP-6110, EIP-7002, EIP-7251, EIP-7623, EIP-7685, EIP-7702, EIP-7840
	Osaka    // provisional
)

var forkNames = map[ForkID]string{
	Frontier: "frontier", Homestead: "homestead", TangerineWhistle: "tangerineWhistle",
	SpuriousDragon: "spuriousDragon", Byzantium: "byzantium", Constantinople: "constantinople",
	Petersburg: "petersburg", Istanbul: "istanbul", MuirGlacier: "muirGlacier",
	Berlin: "berlin", London: "london", ArrowGlacier: "arrowGlacier", GrayGlacier: "grayGlacier",
	Merge: "merge", Shanghai: "shanghai", Cancun: "cancun", Prague: "prague", Osaka: "osaka",
}

func (f ForkID) String() string {
	if n, ok := forkNames[f]; ok {
		return n
	}
	return "unknown"
}

// ChainConfig carries the block numbers/timestamps at which each fork
// activates for a given chain, mirroring the shape go-ethereum's
// params.ChainConfig uses (block-numbered forks up to the Merge,
// timestamp-numbered forks from Shanghai onward).
type ChainConfig struct {
	ChainID *big.Int

	HomesteadBlock        *big.Int
	TangerineWhistleBlock *big.Int
	SpuriousDragonBlock   *big.Int
	ByzantiumBlock        *big.Int
	ConstantinopleBlock   *big.Int
	PetersburgBlock       *big.Int
	IstanbulBlock         *big.Int
	MuirGlacierBlock      *big.Int
	BerlinBlock           *big.Int
	LondonBlock           *big.Int
	ArrowGlacierBlock     *big.Int
	GrayGlacierBlock      *big.Int
	MergeNetsplitBlock    *big.Int

	ShanghaiTime *uint64
	CancunTime   *uint64
	PragueTime   *uint64
	OsakaTime    *uint64
}

// MainnetChainConfig mirrors Ethereum mainnet's activation schedule.
func MainnetChainConfig() *ChainConfig {
	shanghai := uint64(1681338455)
	cancun := uint64(1710338135)
	prague := uint64(1746612311)
	return &ChainConfig{
		ChainID:               big.NewInt(1),
		HomesteadBlock:        big.NewInt(1150000),
		TangerineWhistleBlock: big.NewInt(2463000),
		SpuriousDragonBlock:   big.NewInt(2675000),
		ByzantiumBlock:        big.NewInt(4370000),
		ConstantinopleBlock:   big.NewInt(7280000),
		PetersburgBlock:       big.NewInt(7280000),
		IstanbulBlock:         big.NewInt(9069000),
		MuirGlacierBlock:      big.NewInt(9200000),
		BerlinBlock:           big.NewInt(12244000),
		LondonBlock:           big.NewInt(12965000),
		ArrowGlacierBlock:     big.NewInt(13773000),
		GrayGlacierBlock:      big.NewInt(15050000),
		MergeNetsplitBlock:    big.NewInt(15537394),
		ShanghaiTime:          &shanghai,
		CancunTime:            &cancun,
		PragueTime:            &prague,
	}
}

func blockActive(fork *big.Int, blockNumber *big.Int) bool {
	return fork != nil && blockNumber != nil && blockNumber.Cmp(fork) >= 0
}

func timeActive(fork *uint64, timestamp uint64) bool {
	return fork != nil && timestamp >= *fork
}

// ActiveFork returns the highest fork active at the given block number
// and timestamp (§8: "ActiveForks" resolves a single effective rule set
// for a block from the schedule).
func (c *ChainConfig) ActiveFork(blockNumber *big.Int, timestamp uint64) ForkID {
	fork := Frontier
	if blockActive(c.HomesteadBlock, blockNumber) {
		fork = Homestead
	}
	if blockActive(c.TangerineWhistleBlock, blockNumber) {
		fork = TangerineWhistle
	}
	if blockActive(c.SpuriousDragonBlock, blockNumber) {
		fork = SpuriousDragon
	}
	if blockActive(c.ByzantiumBlock, blockNumber) {
		fork = Byzantium
	}
	if blockActive(c.ConstantinopleBlock, blockNumber) {
		fork = Constantinople
	}
	if blockActive(c.PetersburgBlock, blockNumber) {
		fork = Petersburg
	}
	if blockActive(c.IstanbulBlock, blockNumber) {
		fork = Istanbul
	}
	if blockActive(c.MuirGlacierBlock, blockNumber) {
		fork = MuirGlacier
	}
	if blockActive(c.BerlinBlock, blockNumber) {
		fork = Berlin
	}
	if blockActive(c.LondonBlock, blockNumber) {
		fork = London
	}
	if blockActive(c.ArrowGlacierBlock, blockNumber) {
		fork = ArrowGlacier
	}
	if blockActive(c.GrayGlacierBlock, blockNumber) {
		fork = GrayGlacier
	}
	if blockActive(c.MergeNetsplitBlock, blockNumber) {
		fork = Merge
	}
	if timeActive(c.ShanghaiTime, timestamp) {
		fork = Shanghai
	}
	if timeActive(c.CancunTime, timestamp) {
		fork = Cancun
	}
	if timeActive(c.PragueTime, timestamp) {
		fork = Prague
	}
	if timeActive(c.OsakaTime, timestamp) {
		fork = Osaka
	}
	return fork
}

// IsAtLeast reports whether fork has activated by (blockNumber, timestamp).
func (c *ChainConfig) IsAtLeast(fork ForkID, blockNumber *big.Int, timestamp uint64) bool {
	return c.ActiveFork(blockNumber, timestamp) >= fork
}

// Rules is a resolved, block-specific view of which protocol rule
// changes are active — the "eip(n)" predicate from the Design Notes,
// materialized once per block/transaction instead of re-deriving fork
// comparisons in every call site.
type Rules struct {
	ChainID *big.Int
	Fork    ForkID

	IsHomestead        bool
	IsEIP150           bool // TangerineWhistle
	IsEIP155           bool // SpuriousDragon
	IsEIP158           bool // SpuriousDragon, empty-account pruning (EIP-161)
	IsByzantium        bool
	IsConstantinople   bool
	IsPetersburg       bool
	IsIstanbul         bool
	IsBerlin           bool // EIP-2929/2930
	IsLondon           bool // EIP-1559/3529/3541
	IsMerge            bool
	IsShanghai         bool // EIP-3855/3860/4895
	IsCancun           bool // EIP-1153/4844/4788/5656/6780/7516
	IsPrague           bool // EIP-2537/2935/6110/7002/7251/7623/7685/7702
	IsOsaka            bool
}

// Rules resolves the Rules set active for a given block.
func (c *ChainConfig) Rules(blockNumber *big.Int, timestamp uint64) Rules {
	fork := c.ActiveFork(blockNumber, timestamp)
	return Rules{
		ChainID:          c.ChainID,
		Fork:             fork,
		IsHomestead:      fork >= Homestead,
		IsEIP150:         fork >= TangerineWhistle,
		IsEIP155:         fork >= SpuriousDragon,
		IsEIP158:         fork >= SpuriousDragon,
		IsByzantium:      fork >= Byzantium,
		IsConstantinople: fork >= Constantinople,
		IsPetersburg:     fork >= Petersburg,
		IsIstanbul:       fork >= Istanbul,
		IsBerlin:         fork >= Berlin,
		IsLondon:         fork >= London,
		IsMerge:          fork >= Merge,
		IsShanghai:       fork >= Shanghai,
		IsCancun:         fork >= Cancun,
		IsPrague:         fork >= Prague,
		IsOsaka:          fork >= Osaka,
	}
}

// NextForkAfter returns the next fork boundary strictly after the given
// block/timestamp, and whether one exists (§8).
func (c *ChainConfig) NextForkAfter(blockNumber *big.Int, timestamp uint64) (ForkID, bool) {
	current := c.ActiveFork(blockNumber, timestamp)
	if current < Osaka {
		return current + 1, true
	}
	return current, false
}
