// Package ledger holds the pure point-pool arithmetic used by the allocation
// ledger. Persistence lives in the storage packages; this package only decides
// whether a balance change is legal.
package ledger

import (
	"strconv"
	"strings"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
)

// Pool names one of the four progression point balances.
type Pool string

const (
	PoolSkill     Pool = "skill"
	PoolArchetype Pool = "archetype"
	PoolSpecies   Pool = "species"
	PoolSignature Pool = "signature"
)

// AllPools lists the pools in display order.
var AllPools = []Pool{PoolSkill, PoolArchetype, PoolSpecies, PoolSignature}

var (
	// ErrInsufficientFunds indicates a debit larger than the pool balance.
	ErrInsufficientFunds = apperrors.New(apperrors.CodeInsufficientFunds, "insufficient points")
	// ErrInvalidAmount indicates a zero or negative debit, or a negative grant.
	ErrInvalidAmount = apperrors.New(apperrors.CodeInvalidAmount, "invalid point amount")
	// ErrUnknownPool indicates a pool name outside AllPools.
	ErrUnknownPool = apperrors.New(apperrors.CodeUnknownPool, "unknown point pool")
)

// ParsePool resolves a pool name, case-insensitively.
func ParsePool(value string) (Pool, error) {
	pool := Pool(strings.ToLower(strings.TrimSpace(value)))
	switch pool {
	case PoolSkill, PoolArchetype, PoolSpecies, PoolSignature:
		return pool, nil
	default:
		return "", ErrUnknownPool.Detail(map[string]string{"pool": value})
	}
}

// Pools is a snapshot of the four balances of one character.
type Pools struct {
	Skill     int `json:"skill" yaml:"skill"`
	Archetype int `json:"archetype" yaml:"archetype"`
	Species   int `json:"species" yaml:"species"`
	Signature int `json:"signature" yaml:"signature"`
}

// Balance returns the balance of pool. Unknown pools report zero.
func (p Pools) Balance(pool Pool) int {
	switch pool {
	case PoolSkill:
		return p.Skill
	case PoolArchetype:
		return p.Archetype
	case PoolSpecies:
		return p.Species
	case PoolSignature:
		return p.Signature
	default:
		return 0
	}
}

// Of returns pools holding amount in pool and nothing elsewhere.
func Of(pool Pool, amount int) Pools {
	return Pools{}.with(pool, amount)
}

func (p Pools) with(pool Pool, value int) Pools {
	switch pool {
	case PoolSkill:
		p.Skill = value
	case PoolArchetype:
		p.Archetype = value
	case PoolSpecies:
		p.Species = value
	case PoolSignature:
		p.Signature = value
	}
	return p
}

// Debit returns the pools after removing amount from pool.
// The receiver is never modified; a failed debit leaves no trace.
func (p Pools) Debit(pool Pool, amount int) (Pools, error) {
	if _, err := ParsePool(string(pool)); err != nil {
		return p, err
	}
	if amount <= 0 {
		return p, ErrInvalidAmount.Detail(map[string]string{"amount": strconv.Itoa(amount)})
	}
	have := p.Balance(pool)
	if have < amount {
		return p, ErrInsufficientFunds.Detail(map[string]string{
			"pool": string(pool),
			"need": strconv.Itoa(amount),
			"have": strconv.Itoa(have),
		})
	}
	return p.with(pool, have-amount), nil
}

// Validate rejects negative balances.
func (p Pools) Validate() error {
	for _, pool := range AllPools {
		if p.Balance(pool) < 0 {
			return ErrInvalidAmount.Detail(map[string]string{
				"pool":   string(pool),
				"amount": strconv.Itoa(p.Balance(pool)),
			})
		}
	}
	return nil
}

// Credit returns the pools after adding every amount in grant.
func (p Pools) Credit(grant Pools) (Pools, error) {
	if err := grant.Validate(); err != nil {
		return p, err
	}
	return Pools{
		Skill:     p.Skill + grant.Skill,
		Archetype: p.Archetype + grant.Archetype,
		Species:   p.Species + grant.Species,
		Signature: p.Signature + grant.Signature,
	}, nil
}

// Total sums all four pools.
func (p Pools) Total() int {
	return p.Skill + p.Archetype + p.Species + p.Signature
}

// IsZero reports whether every pool is empty.
func (p Pools) IsZero() bool {
	return p == Pools{}
}
