package scheduler

import "sort"

// pairCandidate is a back-to-back pair of unused teaching slots on one day
// together with the teachers free for both halves.
type pairCandidate struct {
	first    TimeSlot
	second   TimeSlot
	teachers []TeacherAssignment
	score    float64
}

// tryDoublePeriod attempts one atomic two-hour placement for a high-load
// subject: the highest-scoring back-to-back pair of free slots on a single
// day, assigned to one teacher free for both. Returns whether a pair was
// placed.
//
// The attempt is made regardless of how many hours remain for the subject,
// so an odd quota can end up one hour over target. Callers tolerate the
// overshoot; skipping the attempt when fewer than two hours remain would
// silently change long-standing shortfall reporting.
func (r *run) tryDoublePeriod(subject Subject) bool {
	best := r.bestPair(subject.ID)
	if best == nil {
		return false
	}

	chosen := best.teachers[0]
	if len(best.teachers) > 1 {
		chosen = best.teachers[r.rng.Intn(len(best.teachers))]
	}

	r.place(subject.ID, chosen.TeacherID, best.first)
	r.place(subject.ID, chosen.TeacherID, best.second)
	r.doublePeriods++
	return true
}

func (r *run) bestPair(subjectID string) *pairCandidate {
	byDay := make(map[int][]TimeSlot)
	days := make([]int, 0)
	for _, slot := range r.teaching {
		if r.usedSlots[slot.ID] {
			continue
		}
		if _, ok := byDay[slot.DayOfWeek]; !ok {
			days = append(days, slot.DayOfWeek)
		}
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slot)
	}
	sort.Ints(days)

	var best *pairCandidate
	for _, day := range days {
		slots := byDay[day]
		sort.SliceStable(slots, func(i, j int) bool {
			return slots[i].StartTime < slots[j].StartTime
		})
		for i := 0; i+1 < len(slots); i++ {
			first, second := slots[i], slots[i+1]
			if first.EndTime != second.StartTime {
				continue
			}
			teachers := r.teachersForPair(subjectID, first, second)
			if len(teachers) == 0 {
				continue
			}
			score := (r.strategyWeight(first)+r.strategyWeight(second))/2 + r.rng.Float64()*jitterMagnitude
			if best == nil || score > best.score {
				best = &pairCandidate{first: first, second: second, teachers: teachers, score: score}
			}
		}
	}
	return best
}

func (r *run) teachersForPair(subjectID string, first, second TimeSlot) []TeacherAssignment {
	var teachers []TeacherAssignment
	seen := make(map[string]bool)
	for _, assignment := range r.bySubject[subjectID] {
		if seen[assignment.TeacherID] {
			continue
		}
		seen[assignment.TeacherID] = true
		if r.teacherSchedule[assignment.TeacherID][first.ID] || r.teacherSchedule[assignment.TeacherID][second.ID] {
			continue
		}
		if !r.withinAvailability(assignment.TeacherID, first) || !r.withinAvailability(assignment.TeacherID, second) {
			continue
		}
		teachers = append(teachers, assignment)
	}
	return teachers
}
