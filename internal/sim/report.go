package sim

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport prints a session summary: one reward pair per match in
// contender order, then wins, totals and each contender's reward list.
func WriteReport(w io.Writer, r *SessionReport) error {
	first, second := r.Contenders[0], r.Contenders[1]

	var sb strings.Builder
	for _, rec := range r.Matches {
		if rec.Result == nil {
			continue
		}
		if !rec.Result.Completed() {
			fmt.Fprintf(&sb, "match %d aborted: %v\n", rec.Index, rec.Err)
			continue
		}
		rewards := rec.ContenderRewards()
		fmt.Fprintf(&sb, "(%d, %d)\n", rewards[0], rewards[1])
	}

	sb.WriteString("Simulation has ended\n")
	fmt.Fprintf(&sb, "Won by %s, by %s, draws: (%d, %d, %d)\n",
		first.Name, second.Name, first.Wins, second.Wins, r.Draws)
	fmt.Fprintf(&sb, "Total scores: %s, %s: (%d, %d)\n",
		first.Name, second.Name, first.TotalReward, second.TotalReward)
	if r.Aborted > 0 {
		fmt.Fprintf(&sb, "Aborted matches: %d (caused by %s: %d, %s: %d)\n",
			r.Aborted, first.Name, first.Aborted, second.Name, second.Aborted)
	}
	fmt.Fprintf(&sb, "Decision time: %s: %s, %s: %s\n",
		first.Name, first.DecisionTime, second.Name, second.DecisionTime)

	for _, c := range r.Contenders {
		fmt.Fprintf(&sb, "%s scores:\n", c.Name)
		for _, v := range c.Rewards {
			fmt.Fprintf(&sb, "%d\n", v)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
