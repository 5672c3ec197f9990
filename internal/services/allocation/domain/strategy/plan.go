package strategy

import (
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/catalog"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

// NextAllocation returns the first step of the coach's ordered plan that the
// character can take right now. A step naming a held power means one rank up.
// ok is false when no step applies; the points stay banked for the coach.
func NextAllocation(cat *catalog.Catalog, ch catalog.Character, holdings catalog.Holdings, pools ledger.Pools, plan []string) (catalog.Candidate, bool) {
	for _, powerID := range plan {
		cand, err := cat.Resolve(ch, powerID, holdings, pools)
		if err == nil {
			return cand, true
		}
	}
	return catalog.Candidate{}, false
}
