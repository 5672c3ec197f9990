// Package adherence implements the trust gate that routes an allocation to the
// coach's strategy or to the character's own choice, and the feedback rule
// that moves the trust score after an episode.
package adherence

import (
	"math/rand"
	"strconv"
	"sync"

	apperrors "github.com/kofi-py/Blank-Wars-Sandbox-main-sub002/internal/platform/errors"
)

const (
	// MinScore and MaxScore bound adherence and bond.
	MinScore = 0
	MaxScore = 100
)

// ErrInvalidScore indicates an adherence, bond, or roll outside its range.
var ErrInvalidScore = apperrors.New(apperrors.CodeInvalidScore, "score out of range")

// Roll is the recorded result of one gate evaluation.
type Roll struct {
	Value     int  `json:"roll"`
	Threshold int  `json:"threshold"`
	Passed    bool `json:"passed"`
}

// Check evaluates a d100 roll against an adherence score.
// The roll passes when it is at or below the score, so 0 always fails and
// 100 always passes.
func Check(roll, score int) (Roll, error) {
	if err := ValidateScore(score); err != nil {
		return Roll{}, err
	}
	if roll < 1 || roll > 100 {
		return Roll{}, ErrInvalidScore.Detail(map[string]string{"roll": strconv.Itoa(roll)})
	}
	return Roll{Value: roll, Threshold: score, Passed: roll <= score}, nil
}

// ValidateScore rejects scores outside [MinScore, MaxScore].
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return ErrInvalidScore.Detail(map[string]string{"score": strconv.Itoa(score)})
	}
	return nil
}

// Clamp forces score into [MinScore, MaxScore].
func Clamp(score int) int {
	switch {
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}

// Roller supplies the randomness the engine consumes.
type Roller interface {
	// D100 returns an integer in [1, 100].
	D100() int
	// Coin returns true with probability one half.
	Coin() bool
}

// SeededRoller is a Roller backed by a seeded math/rand source.
// It is safe for concurrent use.
type SeededRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller returns a roller whose sequence is fixed by seed.
func NewRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *SeededRoller) D100() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(100) + 1
}

func (r *SeededRoller) Coin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(2) == 0
}

// Evaluate rolls once and checks the result against score.
func Evaluate(roller Roller, score int) (Roll, error) {
	if err := ValidateScore(score); err != nil {
		return Roll{}, err
	}
	return Check(roller.D100(), score)
}
