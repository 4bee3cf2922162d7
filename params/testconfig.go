package params

import "math/big"

func newUint64(v uint64) *uint64 { return &v }

// AllForksEnabledConfig activates every fork from Homestead through
// Prague, including pre-Merge block-numbered ones, at genesis (Osaka is
// left unscheduled) — used by table-driven tests that want
// a single fixed rule set without a real mainnet schedule.
func AllForksEnabledConfig() *ChainConfig {
	return &ChainConfig{
		ChainID:               big.NewInt(1337),
		HomesteadBlock:        big.NewInt(0),
		TangerineWhistleBlock: big.NewInt(0),
		SpuriousDragonBlock:   big.NewInt(0),
		ByzantiumBlock:        big.NewInt(0),
		ConstantinopleBlock:   big.NewInt(0),
		PetersburgBlock:       big.NewInt(0),
		IstanbulBlock:         big.NewInt(0),
		MuirGlacierBlock:      big.NewInt(0),
		BerlinBlock:           big.NewInt(0),
		LondonBlock:           big.NewInt(0),
		ArrowGlacierBlock:     big.NewInt(0),
		GrayGlacierBlock:      big.NewInt(0),
		MergeNetsplitBlock:    big.NewInt(0),
		ShanghaiTime:          newUint64(0),
		CancunTime:            newUint64(0),
		PragueTime:            newUint64(0),
	}
}
