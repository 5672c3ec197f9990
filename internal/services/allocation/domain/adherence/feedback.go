package adherence

// Branch is the executor that made an episode's decisions.
type Branch string

const (
	BranchCompliant Branch = "compliant"
	BranchRogue     Branch = "rogue"
)

// Profit thresholds for compliant rewards.
const (
	HighProfit   = 1000
	MediumProfit = 500
)

// Outcome summarizes how an episode ended.
type Outcome struct {
	Won    bool `json:"won"`
	Profit int  `json:"profit"`
}

// Delta returns the adherence change earned by an episode.
//
// Rogue episodes always cost trust: -15 on a loss, -10 on a win that lost
// money, -5 otherwise. Compliant episodes are rewarded by profit and never
// penalized.
func Delta(branch Branch, outcome Outcome) int {
	if branch == BranchRogue {
		switch {
		case !outcome.Won:
			return -15
		case outcome.Profit < 0:
			return -10
		default:
			return -5
		}
	}
	switch {
	case outcome.Profit > HighProfit:
		return 5
	case outcome.Profit > MediumProfit:
		return 3
	case outcome.Profit > 0:
		return 1
	default:
		return 0
	}
}

// Adjust applies delta to score and clamps the result.
func Adjust(score, delta int) int {
	return Clamp(score + delta)
}
