package agenda

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Strategy selects the display order of tasks.
type Strategy int

const (
	// Manual orders by rank, then priority (desc), then due time.
	Manual Strategy = iota
	// PriorityFirst orders by priority (desc), then due time, ignoring rank.
	PriorityFirst
)

func (s Strategy) String() string {
	if s == PriorityFirst {
		return "priority"
	}
	return "manual"
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "manual":
		return Manual, nil
	case "priority":
		return PriorityFirst, nil
	default:
		return Manual, fmt.Errorf("unknown sort strategy %q", s)
	}
}

// SortedView returns a new slice holding tasks in the order given by
// strategy. Ties left by the key chain keep their input order.
func SortedView(tasks []*Task, strategy Strategy) []*Task {
	out := slices.Clone(tasks)
	byPriorityDue := func(a, b *Task) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return a.Due.Compare(b.Due)
	}
	switch strategy {
	case PriorityFirst:
		slices.SortStableFunc(out, byPriorityDue)
	default:
		slices.SortStableFunc(out, func(a, b *Task) int {
			if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
				return c
			}
			return byPriorityDue(a, b)
		})
	}
	return out
}

// SwapRank exchanges the ranks of tasks a and b. It is a no-op when either
// id does not resolve or when a == b. The policy has no notion of
// neighbours; callers pick b from the Manual view.
func SwapRank(ctx context.Context, store TaskStore, a, b int64) (bool, error) {
	if a == b {
		return false, nil
	}
	err := store.SwapRanks(ctx, a, b)
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("swap ranks of tasks %d and %d: %w", a, b, err)
	}
	return true, nil
}
