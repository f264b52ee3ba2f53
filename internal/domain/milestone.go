package domain

// MilestoneThresholds is the fixed ascending set of percentages that trigger
// a one-time announcement per crossing.
var MilestoneThresholds = []int{25, 50, 75, 100}

// CrossedMilestones returns the thresholds newly crossed by moving from the
// stored last-announced threshold to newPercent, plus the new last value.
//
// A threshold t is crossed when lastMilestone < t <= newPercent. Detection
// compares against the stored last value, not the raw current percent, so the
// last value never decreases even if percent is later lowered - nothing gets
// re-announced.
func CrossedMilestones(lastMilestone, newPercent int) (crossed []int, newLast int) {
	newLast = lastMilestone
	for _, t := range MilestoneThresholds {
		if lastMilestone < t && t <= newPercent {
			crossed = append(crossed, t)
			newLast = t
		}
	}
	return crossed, newLast
}
