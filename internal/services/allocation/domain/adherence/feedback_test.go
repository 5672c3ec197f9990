package adherence

import "testing"

func TestDelta(t *testing.T) {
	cases := []struct {
		name    string
		branch  Branch
		outcome Outcome
		want    int
	}{
		{"rogue loss", BranchRogue, Outcome{Won: false, Profit: 2000}, -15},
		{"rogue win negative profit", BranchRogue, Outcome{Won: true, Profit: -50}, -10},
		{"rogue win", BranchRogue, Outcome{Won: true, Profit: 5000}, -5},
		{"compliant loss", BranchCompliant, Outcome{Won: false, Profit: -300}, 0},
		{"compliant big profit", BranchCompliant, Outcome{Won: true, Profit: 1001}, 5},
		{"compliant at high threshold", BranchCompliant, Outcome{Won: true, Profit: 1000}, 3},
		{"compliant good profit", BranchCompliant, Outcome{Won: true, Profit: 501}, 3},
		{"compliant small profit", BranchCompliant, Outcome{Won: true, Profit: 1}, 1},
		{"compliant break even", BranchCompliant, Outcome{Won: true, Profit: 0}, 0},
	}
	for _, tc := range cases {
		if got := Delta(tc.branch, tc.outcome); got != tc.want {
			t.Fatalf("%s: delta = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestAdjustClamps(t *testing.T) {
	if got := Adjust(10, -15); got != 0 {
		t.Fatalf("adjust = %d", got)
	}
	if got := Adjust(98, 5); got != 100 {
		t.Fatalf("adjust = %d", got)
	}
}
