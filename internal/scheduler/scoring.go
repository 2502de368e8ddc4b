package scheduler

// targetDaySpread maps a weekly-hour quota to the minimum number of distinct
// days those hours should cover. Thresholds are checked high to low; the
// first match wins.
func targetDaySpread(weeklyHours int) int {
	switch {
	case weeklyHours >= 5:
		return 3
	case weeklyHours >= 3:
		return 2
	case weeklyHours >= 1:
		return 1
	default:
		return 0
	}
}

// strategyWeight boosts slots in the preferred half of the day. Balanced
// strategy applies no boost.
func (r *run) strategyWeight(slot TimeSlot) float64 {
	switch r.strategy {
	case StrategyMorningHeavy:
		if slot.StartTime < morningCutoff {
			return strategyBoost
		}
	case StrategyAfternoonHeavy:
		if slot.StartTime >= afternoonCutoff {
			return strategyBoost
		}
	}
	return 1
}

// scoreSlot computes the composite single-slot score:
// strategyWeight x newDayBonus x distributionWeight x consecutiveWeight,
// plus a small jitter from the seeded generator to break exact ties.
func (r *run) scoreSlot(subject Subject, slot TimeSlot) float64 {
	score := r.strategyWeight(slot)

	days := r.subjectDays[subject.ID]
	if days[slot.DayOfWeek] == 0 && countNonZero(days) < targetDaySpread(subject.WeeklyHours) {
		score *= newDayBonus
	}

	score *= 1.0 / float64(days[slot.DayOfWeek]+1)
	score *= 1.0 / float64(1+r.consecutiveCount(subject.ID, slot.DayOfWeek))

	return score + r.rng.Float64()*jitterMagnitude
}

// consecutiveCount returns how many already-placed slots of the subject on
// the given day sit back-to-back with another placement of the same subject.
// This discourages accidental triple-plus blocks beyond the intentional
// double-period mechanism.
func (r *run) consecutiveCount(subjectID string, dayOfWeek int) int {
	var daySlots []TimeSlot
	for _, slot := range r.subjectSlots[subjectID] {
		if slot.DayOfWeek == dayOfWeek {
			daySlots = append(daySlots, slot)
		}
	}
	if len(daySlots) < 2 {
		return 0
	}

	count := 0
	for i, slot := range daySlots {
		for j, other := range daySlots {
			if i == j {
				continue
			}
			if slot.EndTime == other.StartTime || other.EndTime == slot.StartTime {
				count++
				break
			}
		}
	}
	return count
}

func countNonZero(days map[int]int) int {
	count := 0
	for _, hours := range days {
		if hours > 0 {
			count++
		}
	}
	return count
}
