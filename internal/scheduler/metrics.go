package scheduler

// finalize derives the distribution report, summary statistics and the
// success verdict from the run's bookkeeping.
func (r *run) finalize(subjects []Subject) Result {
	distribution := make(map[string]SubjectDistribution)
	totalSlotsNeeded := 0
	totalSubjects := 0
	subjectsPlaced := 0
	var scoreSum float64

	for _, subject := range subjects {
		if subject.WeeklyHours <= 0 {
			continue
		}
		totalSubjects++
		totalSlotsNeeded += subject.WeeklyHours

		entry := SubjectDistribution{
			SubjectID:   subject.ID,
			SubjectName: subject.Name,
			HoursByDay:  make(map[int]int),
		}
		for day, hours := range r.subjectDays[subject.ID] {
			if hours > 0 {
				entry.HoursByDay[day] = hours
				entry.TotalHours += hours
				entry.DaysUsed++
			}
		}
		entry.MetDayTarget = entry.DaysUsed >= targetDaySpread(subject.WeeklyHours)
		entry.Balanced = isBalanced(entry.HoursByDay, entry.TotalHours)

		if entry.TotalHours > 0 {
			subjectsPlaced++
		}
		if entry.MetDayTarget {
			scoreSum += 0.5
		}
		if entry.Balanced {
			scoreSum += 0.5
		}
		distribution[subject.ID] = entry
	}

	distributionScore := 0.0
	if totalSubjects > 0 {
		distributionScore = scoreSum / float64(totalSubjects)
	}

	stats := Statistics{
		TotalSlotsNeeded:  totalSlotsNeeded,
		SlotsPlaced:       len(r.timetable),
		SlotsConflicted:   r.slotsConflicted,
		SubjectsPlaced:    subjectsPlaced,
		TotalSubjects:     totalSubjects,
		DoublePeriods:     r.doublePeriods,
		DaysWithClasses:   r.daysWithClasses(),
		DistributionScore: distributionScore,
	}

	// Soft heuristic: a failed verdict means "review needed", not
	// "scheduling impossible".
	success := len(r.conflicts) == 0 &&
		subjectsPlaced == totalSubjects &&
		float64(stats.SlotsPlaced) >= successPlacedRatio*float64(totalSlotsNeeded)

	timetable := r.timetable
	if timetable == nil {
		timetable = make([]Entry, 0)
	}
	conflicts := r.conflicts
	if conflicts == nil {
		conflicts = make([]Conflict, 0)
	}
	multi := r.multi
	if multi == nil {
		multi = make([]MultiTeacherOption, 0)
	}

	return Result{
		Success:           success,
		Timetable:         timetable,
		Conflicts:         conflicts,
		MultiTeacherSlots: multi,
		Statistics:        stats,
		Distribution:      distribution,
	}
}

// daysWithClasses counts calendar days holding at least one placement.
// Reporting only; not a correctness constraint.
func (r *run) daysWithClasses() int {
	days := make(map[int]bool)
	for _, entry := range r.timetable {
		if slot, ok := r.slotByID[entry.TimeSlotID]; ok {
			days[slot.DayOfWeek] = true
		}
	}
	return len(days)
}

// isBalanced reports whether no single day holds more than half of the
// subject's placed hours. Trivially true when nothing is placed.
func isBalanced(hoursByDay map[int]int, totalHours int) bool {
	if totalHours == 0 {
		return true
	}
	for _, hours := range hoursByDay {
		if float64(hours) > float64(totalHours)/2 {
			return false
		}
	}
	return true
}
