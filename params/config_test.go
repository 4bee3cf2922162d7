package params

import (
	"math/big"
	"testing"
)

func TestActiveForkBlockBoundaries(t *testing.T) {
	cfg := MainnetChainConfig()

	tests := []struct {
		name        string
		blockNumber *big.Int
		timestamp   uint64
		want        ForkID
	}{
		{"genesis", big.NewInt(0), 0, Frontier},
		{"just before Homestead", big.NewInt(1149999), 0, Frontier},
		{"at Homestead", big.NewInt(1150000), 0, Homestead},
		{"at London", big.NewInt(12965000), 0, London},
		{"at Merge", big.NewInt(15537394), 0, Merge},
		{"just before Shanghai", big.NewInt(20000000), 1681338454, Merge},
		{"at Shanghai", big.NewInt(20000000), 1681338455, Shanghai},
		{"at Cancun", big.NewInt(20000000), 1710338135, Cancun},
		{"at Prague", big.NewInt(20000000), 1746612311, Prague},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.ActiveFork(tt.blockNumber, tt.timestamp); got != tt.want {
				t.Errorf("ActiveFork(%s, %d) = %s, want %s", tt.blockNumber, tt.timestamp, got, tt.want)
			}
		})
	}
}

func TestRulesAreMonotonic(t *testing.T) {
	cfg := MainnetChainConfig()
	rules := cfg.Rules(big.NewInt(20000000), 1746612311) // Prague+

	if !rules.IsPrague {
		t.Fatalf("expected Prague active")
	}
	// Every fork gate up through Prague must also report true: a Rules
	// view for a later fork implies every earlier fork already applies.
	if !(rules.IsHomestead && rules.IsEIP150 && rules.IsEIP155 && rules.IsEIP158 &&
		rules.IsByzantium && rules.IsConstantinople && rules.IsPetersburg &&
		rules.IsIstanbul && rules.IsBerlin && rules.IsLondon && rules.IsMerge &&
		rules.IsShanghai && rules.IsCancun) {
		t.Fatalf("Rules at Prague must have every earlier fork gate set: %+v", rules)
	}
	if rules.IsOsaka {
		t.Fatalf("Osaka must not be active on a Prague-only Rules view")
	}
}

func TestRulesAtFrontierHasNoLaterForks(t *testing.T) {
	cfg := MainnetChainConfig()
	rules := cfg.Rules(big.NewInt(0), 0)
	if rules.Fork != Frontier {
		t.Fatalf("expected Frontier at genesis, got %s", rules.Fork)
	}
	if rules.IsHomestead || rules.IsLondon || rules.IsShanghai || rules.IsCancun || rules.IsPrague {
		t.Fatalf("Frontier Rules must have every later fork gate clear: %+v", rules)
	}
}

func TestNextForkAfter(t *testing.T) {
	cfg := MainnetChainConfig()

	next, ok := cfg.NextForkAfter(big.NewInt(0), 0)
	if !ok || next != Homestead {
		t.Fatalf("NextForkAfter(genesis) = (%s, %v), want (Homestead, true)", next, ok)
	}

	// MainnetChainConfig leaves OsakaTime unset, so the schedule never
	// activates past Prague; the next boundary is always reported as Osaka.
	next, ok = cfg.NextForkAfter(big.NewInt(30000000), 2000000000)
	if !ok || next != Osaka {
		t.Fatalf("NextForkAfter(post-Prague) = (%s, %v), want (Osaka, true)", next, ok)
	}

	osakaTime := uint64(1)
	withOsaka := *cfg
	withOsaka.OsakaTime = &osakaTime
	_, ok = withOsaka.NextForkAfter(big.NewInt(30000000), 2000000000)
	if ok {
		t.Fatalf("NextForkAfter once Osaka itself is active should report no further fork")
	}
}

func TestForkIDStringUnknown(t *testing.T) {
	var f ForkID = 999
	if f.String() != "unknown" {
		t.Errorf("unregistered ForkID.String() = %q, want %q", f.String(), "unknown")
	}
}
