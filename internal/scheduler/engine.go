package scheduler

import (
	"fmt"
	"math/rand"
	"sort"
)

const (
	doublePeriodMinHours = 4
	doublePeriodChance   = 0.6
	jitterMagnitude      = 0.1
	newDayBonus          = 1.5
	strategyBoost        = 1.8
	morningCutoff        = "11:00"
	afternoonCutoff      = "13:00"
	successPlacedRatio   = 0.8
)

// run carries the mutable bookkeeping for a single Generate call. All of it
// is freshly constructed per invocation; nothing survives between runs.
type run struct {
	rng          *rand.Rand
	classID      string
	academicYear string
	strategy     Strategy

	teaching     []TimeSlot
	slotByID     map[string]TimeSlot
	bySubject    map[string][]TeacherAssignment
	availability map[string][]AvailabilitySlot

	usedSlots       map[string]bool
	teacherSchedule map[string]map[string]bool

	timetable []Entry
	conflicts []Conflict
	multi     []MultiTeacherOption

	subjectDays    map[string]map[int]int
	subjectSlots   map[string][]TimeSlot
	preservedHours map[string]int

	doublePeriods   int
	slotsConflicted int
}

// Generate runs the full scheduling pipeline for one class: subject
// prioritization, double-period attempts, scored single-slot filling and
// distribution metrics. It is deterministic for a fixed Constraints.Seed,
// has no side effects and never mutates its input.
func Generate(c Constraints) Result {
	r := newRun(c)
	r.seedExisting(c)

	for _, subject := range prioritizeSubjects(c.Subjects, r.bySubject) {
		if len(r.bySubject[subject.ID]) == 0 {
			r.conflicts = append(r.conflicts, Conflict{
				Type:      ConflictNoTeacherAvailable,
				Message:   fmt.Sprintf("no teacher assigned to subject %s", subject.Name),
				SubjectID: subject.ID,
			})
			continue
		}
		r.scheduleSubject(subject)
	}

	return r.finalize(c.Subjects)
}

func newRun(c Constraints) *run {
	strategy := c.Strategy
	if strategy == "" {
		strategy = StrategyBalanced
	}

	r := &run{
		rng:             rand.New(rand.NewSource(c.Seed)),
		classID:         c.ClassID,
		academicYear:    c.AcademicYear,
		strategy:        strategy,
		slotByID:        make(map[string]TimeSlot, len(c.TimeSlots)),
		bySubject:       make(map[string][]TeacherAssignment),
		availability:    make(map[string][]AvailabilitySlot),
		usedSlots:       make(map[string]bool),
		teacherSchedule: make(map[string]map[string]bool),
		subjectDays:     make(map[string]map[int]int),
		subjectSlots:    make(map[string][]TimeSlot),
		preservedHours:  make(map[string]int),
	}

	for _, slot := range c.TimeSlots {
		r.slotByID[slot.ID] = slot
		if !slot.IsBreak {
			r.teaching = append(r.teaching, slot)
		}
	}
	for _, assignment := range c.TeacherAssignments {
		r.bySubject[assignment.SubjectID] = append(r.bySubject[assignment.SubjectID], assignment)
	}
	for _, window := range c.TeacherAvailability {
		r.availability[window.TeacherID] = append(r.availability[window.TeacherID], window)
	}
	return r
}

// seedExisting absorbs a preserved timetable into the output verbatim
// (status forced to draft) and records its occupancy so new placements never
// collide with it. Entries that double-book a teacher or sit outside their
// availability are flagged, not rejected.
func (r *run) seedExisting(c Constraints) {
	if !c.PreserveExisting {
		return
	}
	for _, existing := range c.ExistingTimetable {
		entry := existing
		entry.Status = StatusDraft

		if slot, ok := r.slotByID[entry.TimeSlotID]; ok {
			if r.teacherSchedule[entry.TeacherID][entry.TimeSlotID] {
				r.conflicts = append(r.conflicts, Conflict{
					Type:       ConflictTeacherDoubleBooked,
					Message:    fmt.Sprintf("teacher %s is booked twice in slot %s", entry.TeacherID, entry.TimeSlotID),
					SubjectID:  entry.SubjectID,
					TimeSlotID: entry.TimeSlotID,
					TeacherID:  entry.TeacherID,
				})
			} else if !r.withinAvailability(entry.TeacherID, slot) {
				r.conflicts = append(r.conflicts, Conflict{
					Type:       ConflictTeacherUnavailable,
					Message:    fmt.Sprintf("teacher %s has no availability window covering slot %s", entry.TeacherID, entry.TimeSlotID),
					SubjectID:  entry.SubjectID,
					TimeSlotID: entry.TimeSlotID,
					TeacherID:  entry.TeacherID,
				})
			}
			r.recordPlacement(entry.SubjectID, slot)
		}

		r.usedSlots[entry.TimeSlotID] = true
		r.reserveTeacher(entry.TeacherID, entry.TimeSlotID)
		r.preservedHours[entry.SubjectID]++
		r.timetable = append(r.timetable, entry)
	}
}

// prioritizeSubjects orders schedulable subjects by descending weekly hours,
// breaking ties by ascending qualified-teacher count so scarce subjects get
// first pick of slots. Zero-quota subjects are dropped entirely.
func prioritizeSubjects(subjects []Subject, bySubject map[string][]TeacherAssignment) []Subject {
	ordered := make([]Subject, 0, len(subjects))
	for _, subject := range subjects {
		if subject.WeeklyHours > 0 {
			ordered = append(ordered, subject)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].WeeklyHours != ordered[j].WeeklyHours {
			return ordered[i].WeeklyHours > ordered[j].WeeklyHours
		}
		return len(bySubject[ordered[i].ID]) < len(bySubject[ordered[j].ID])
	})
	return ordered
}

func (r *run) scheduleSubject(subject Subject) {
	maxHours := subject.WeeklyHours
	hoursPlaced := r.preservedHours[subject.ID]

	// The quota guard runs after each placement, so a double period started
	// with one remaining hour can overshoot the quota by one. Accepted
	// behaviour; see the note on tryDoublePeriod.
	if maxHours >= doublePeriodMinHours && r.rng.Float64() < doublePeriodChance {
		if hoursPlaced < maxHours && r.tryDoublePeriod(subject) {
			hoursPlaced += 2
		}
	}

	if hoursPlaced < maxHours {
		hoursPlaced += r.fillSingles(subject, maxHours-hoursPlaced)
	}

	switch {
	case hoursPlaced == 0:
		r.conflicts = append(r.conflicts, Conflict{
			Type:      ConflictQuotaExceeded,
			Message:   fmt.Sprintf("could not place any hours for subject %s", subject.Name),
			SubjectID: subject.ID,
		})
	case hoursPlaced < maxHours:
		r.conflicts = append(r.conflicts, Conflict{
			Type:      ConflictQuotaExceeded,
			Message:   fmt.Sprintf("subject %s placed %d of %d weekly hours", subject.Name, hoursPlaced, maxHours),
			SubjectID: subject.ID,
		})
	}
}

// fillSingles walks unused teaching slots in descending score order, placing
// the subject until the remaining quota is exhausted. Returns hours placed.
func (r *run) fillSingles(subject Subject, remaining int) int {
	type candidate struct {
		slot  TimeSlot
		score float64
	}

	candidates := make([]candidate, 0, len(r.teaching))
	for _, slot := range r.teaching {
		if r.usedSlots[slot.ID] {
			continue
		}
		candidates = append(candidates, candidate{slot: slot, score: r.scoreSlot(subject, slot)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	placed := 0
	for _, cand := range candidates {
		available := r.availableTeachers(subject.ID, cand.slot)
		if len(available) == 0 {
			r.conflicts = append(r.conflicts, Conflict{
				Type:       ConflictNoTeacherAvailable,
				Message:    fmt.Sprintf("no qualified teacher free for subject %s in slot %s", subject.Name, cand.slot.ID),
				SubjectID:  subject.ID,
				TimeSlotID: cand.slot.ID,
			})
			r.slotsConflicted++
			continue
		}

		if len(available) > 1 {
			options := make([]TeacherOption, 0, len(available))
			for _, assignment := range available {
				options = append(options, TeacherOption{
					TeacherID:   assignment.TeacherID,
					TeacherName: assignment.TeacherName,
					Reason:      "qualified and available",
				})
			}
			r.multi = append(r.multi, MultiTeacherOption{
				SubjectID:  subject.ID,
				TimeSlotID: cand.slot.ID,
				Teachers:   options,
			})
		}

		r.place(subject.ID, available[0].TeacherID, cand.slot)
		placed++
		if placed >= remaining {
			break
		}
	}
	return placed
}

// availableTeachers returns, in assignment order, the qualified teachers who
// are free for the slot: not already booked then, with the slot's window
// inside one of their availability windows for that day.
func (r *run) availableTeachers(subjectID string, slot TimeSlot) []TeacherAssignment {
	var available []TeacherAssignment
	seen := make(map[string]bool)
	for _, assignment := range r.bySubject[subjectID] {
		if seen[assignment.TeacherID] {
			continue
		}
		seen[assignment.TeacherID] = true
		if r.teacherSchedule[assignment.TeacherID][slot.ID] {
			continue
		}
		if !r.withinAvailability(assignment.TeacherID, slot) {
			continue
		}
		available = append(available, assignment)
	}
	return available
}

func (r *run) withinAvailability(teacherID string, slot TimeSlot) bool {
	for _, window := range r.availability[teacherID] {
		if window.DayOfWeek != slot.DayOfWeek {
			continue
		}
		if slot.StartTime >= window.StartTime && slot.EndTime <= window.EndTime {
			return true
		}
	}
	return false
}

func (r *run) place(subjectID, teacherID string, slot TimeSlot) {
	r.timetable = append(r.timetable, Entry{
		ClassID:      r.classID,
		SubjectID:    subjectID,
		TeacherID:    teacherID,
		TimeSlotID:   slot.ID,
		AcademicYear: r.academicYear,
		Status:       StatusDraft,
	})
	r.usedSlots[slot.ID] = true
	r.reserveTeacher(teacherID, slot.ID)
	r.recordPlacement(subjectID, slot)
}

func (r *run) reserveTeacher(teacherID, timeSlotID string) {
	if r.teacherSchedule[teacherID] == nil {
		r.teacherSchedule[teacherID] = make(map[string]bool)
	}
	r.teacherSchedule[teacherID][timeSlotID] = true
}

func (r *run) recordPlacement(subjectID string, slot TimeSlot) {
	if r.subjectDays[subjectID] == nil {
		r.subjectDays[subjectID] = make(map[int]int)
	}
	r.subjectDays[subjectID][slot.DayOfWeek]++
	r.subjectSlots[subjectID] = append(r.subjectSlots[subjectID], slot)
}
