package catalog

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
	"github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/services/allocation/domain/ledger"
)

// ErrInvalid marks a catalog entry that fails validation.
var ErrInvalid = apperrors.New(apperrors.CodeCatalogInvalid, "invalid power catalog")

// Catalog is a validated, read-only set of powers.
type Catalog struct {
	powers []Power
	byID   map[string]Power
}

// New validates powers and builds a catalog ordered by tier then id.
func New(powers []Power) (*Catalog, error) {
	byID := make(map[string]Power, len(powers))
	for i, p := range powers {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, invalid(fmt.Sprintf("entry %d", i), "id is required")
		}
		if _, dup := byID[p.ID]; dup {
			return nil, invalid(p.ID, "duplicate id")
		}
		if err := validatePower(p); err != nil {
			return nil, err
		}
		byID[p.ID] = p
	}
	for _, p := range byID {
		if p.Prerequisite == "" {
			continue
		}
		if p.Prerequisite == p.ID {
			return nil, invalid(p.ID, "power cannot require itself")
		}
		if _, ok := byID[p.Prerequisite]; !ok {
			return nil, invalid(p.ID, "unknown prerequisite "+p.Prerequisite)
		}
	}

	ordered := make([]Power, 0, len(byID))
	for _, p := range byID {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Tier.rank() != ordered[j].Tier.rank() {
			return ordered[i].Tier.rank() < ordered[j].Tier.rank()
		}
		return ordered[i].ID < ordered[j].ID
	})
	return &Catalog{powers: ordered, byID: byID}, nil
}

func validatePower(p Power) error {
	switch {
	case !p.Tier.Valid():
		return invalid(p.ID, fmt.Sprintf("unknown tier %q", p.Tier))
	case p.Tier != TierSkill && strings.TrimSpace(p.ScopeKey) == "":
		return invalid(p.ID, "scoped tier requires a scope key")
	case p.UnlockCost <= 0:
		return invalid(p.ID, "unlock cost must be positive")
	case p.MaxRank < 1:
		return invalid(p.ID, "max rank must be at least 1")
	case p.MaxRank > 1 && p.RankUpCost <= 0:
		return invalid(p.ID, "rank up cost must be positive")
	case p.MaxRank > 2 && p.RankUpCostRank3 <= 0:
		return invalid(p.ID, "rank 3 cost required when max rank exceeds 2")
	case p.MinLevel < 0:
		return invalid(p.ID, "min level must not be negative")
	}
	return nil
}

func invalid(id, reason string) error {
	return ErrInvalid.Detail(map[string]string{"power": id, "reason": reason})
}

// Powers returns the catalog entries in display order.
func (c *Catalog) Powers() []Power {
	out := make([]Power, len(c.powers))
	copy(out, c.powers)
	return out
}

// Len returns the number of powers.
func (c *Catalog) Len() int {
	return len(c.powers)
}

// Get returns the power with id.
func (c *Catalog) Get(id string) (Power, error) {
	p, ok := c.byID[id]
	if !ok {
		return Power{}, ErrPowerNotFound.Detail(map[string]string{"power": id})
	}
	return p, nil
}

// Candidates enumerates every eligible and affordable action against the
// given snapshot. Unlocks come before rank ups; within each, catalog order.
func (c *Catalog) Candidates(ch Character, holdings Holdings, pools ledger.Pools) []Candidate {
	var unlocks, rankUps []Candidate
	for _, p := range c.powers {
		if _, held := holdings[p.ID]; held {
			if cand, err := RankUpCandidate(p, holdings, pools); err == nil {
				rankUps = append(rankUps, cand)
			}
			continue
		}
		if cand, err := UnlockCandidate(ch, p, holdings, pools); err == nil {
			unlocks = append(unlocks, cand)
		}
	}
	return append(unlocks, rankUps...)
}

// Resolve builds the candidate for a requested power: a rank up when the
// character already holds it, an unlock otherwise.
func (c *Catalog) Resolve(ch Character, powerID string, holdings Holdings, pools ledger.Pools) (Candidate, error) {
	p, err := c.Get(powerID)
	if err != nil {
		return Candidate{}, err
	}
	if _, held := holdings[p.ID]; held {
		return RankUpCandidate(p, holdings, pools)
	}
	return UnlockCandidate(ch, p, holdings, pools)
}
