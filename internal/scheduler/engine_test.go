package scheduler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTrivialSingleSubject(t *testing.T) {
	result := Generate(Constraints{
		ClassID:      "class-1",
		AcademicYear: "2026/2027",
		Subjects:     []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 2}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math", SubjectName: "Mathematics"},
		},
		TeacherAvailability: weekdayAvailability("t1"),
		TimeSlots: []TimeSlot{
			teachingSlot(1, "08:00", "09:00"),
			teachingSlot(1, "09:00", "10:00"),
			teachingSlot(1, "10:00", "11:00"),
			teachingSlot(2, "08:00", "09:00"),
			teachingSlot(2, "09:00", "10:00"),
		},
		Seed: 7,
	})

	require.Len(t, result.Timetable, 2)
	assert.Empty(t, result.Conflicts)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Statistics.TotalSlotsNeeded)
	assert.Equal(t, 2, result.Statistics.SlotsPlaced)
	assert.Equal(t, 1, result.Statistics.SubjectsPlaced)
	assert.Equal(t, 1, result.Statistics.TotalSubjects)
	for _, entry := range result.Timetable {
		assert.Equal(t, "class-1", entry.ClassID)
		assert.Equal(t, "t1", entry.TeacherID)
		assert.Equal(t, StatusDraft, entry.Status)
	}
}

func TestGenerateUnavailableTeacher(t *testing.T) {
	result := Generate(Constraints{
		ClassID:  "class-1",
		Subjects: []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 1}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
		},
		TeacherAvailability: []AvailabilitySlot{
			{TeacherID: "t1", DayOfWeek: 2, StartTime: "07:00", EndTime: "17:00"},
		},
		TimeSlots: []TimeSlot{
			teachingSlot(1, "08:00", "09:00"),
			teachingSlot(1, "09:00", "10:00"),
		},
		Seed: 1,
	})

	assert.Empty(t, result.Timetable)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Statistics.SlotsPlaced)
	assert.True(t, hasConflictType(result.Conflicts, ConflictNoTeacherAvailable))
	assert.True(t, hasConflictType(result.Conflicts, ConflictQuotaExceeded))
}

func TestGenerateAmbiguousSlotSurfacesOptions(t *testing.T) {
	result := Generate(Constraints{
		ClassID:  "class-1",
		Subjects: []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 1}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
			{TeacherID: "t2", TeacherName: "Teacher Two", SubjectID: "math"},
		},
		TeacherAvailability: append(weekdayAvailability("t1"), weekdayAvailability("t2")...),
		TimeSlots:           []TimeSlot{teachingSlot(1, "08:00", "09:00")},
		Seed:                3,
	})

	require.Len(t, result.Timetable, 1)
	require.Len(t, result.MultiTeacherSlots, 1)
	option := result.MultiTeacherSlots[0]
	assert.Equal(t, "math", option.SubjectID)
	require.Len(t, option.Teachers, 2)
	assert.Equal(t, "t1", option.Teachers[0].TeacherID)
	assert.Equal(t, "t2", option.Teachers[1].TeacherID)
	// auto-pick is the first candidate in assignment order
	assert.Equal(t, "t1", result.Timetable[0].TeacherID)
}

func TestGenerateDoublePeriod(t *testing.T) {
	constraints := Constraints{
		ClassID:  "class-1",
		Subjects: []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 4}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
			{TeacherID: "t2", TeacherName: "Teacher Two", SubjectID: "math"},
		},
		TeacherAvailability: append(weekdayAvailability("t1"), weekdayAvailability("t2")...),
		TimeSlots:           weekGrid(5, []string{"08:00", "09:00", "10:00", "11:00"}),
	}

	found := false
	for seed := int64(0); seed < 50 && !found; seed++ {
		constraints.Seed = seed
		result := Generate(constraints)
		assert.LessOrEqual(t, result.Statistics.SlotsPlaced, 5, "quota overshoot beyond +1 for seed %d", seed)
		if result.Statistics.DoublePeriods < 1 {
			continue
		}
		found = true
		first, second := result.Timetable[0], result.Timetable[1]
		assert.Equal(t, first.TeacherID, second.TeacherID)
		slots := slotIndex(constraints.TimeSlots)
		assert.Equal(t, slots[first.TimeSlotID].DayOfWeek, slots[second.TimeSlotID].DayOfWeek)
		assert.Equal(t, slots[first.TimeSlotID].EndTime, slots[second.TimeSlotID].StartTime)
	}
	require.True(t, found, "no seed in range triggered a double period")
}

func TestGenerateDeterministic(t *testing.T) {
	constraints := Constraints{
		ClassID: "class-1",
		Subjects: []Subject{
			{ID: "math", Name: "Mathematics", WeeklyHours: 5},
			{ID: "sci", Name: "Science", WeeklyHours: 3},
			{ID: "art", Name: "Art", WeeklyHours: 2},
		},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
			{TeacherID: "t2", TeacherName: "Teacher Two", SubjectID: "math"},
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "sci"},
			{TeacherID: "t3", TeacherName: "Teacher Three", SubjectID: "art"},
		},
		TeacherAvailability: concatAvailability("t1", "t2", "t3"),
		TimeSlots:           weekGrid(5, []string{"07:30", "08:30", "09:30", "10:30", "13:00", "14:00"}),
		Seed:                42,
	}

	first := Generate(constraints)
	second := Generate(constraints)
	assert.Equal(t, first, second)
}

func TestGenerateInvariantsAcrossSeeds(t *testing.T) {
	constraints := Constraints{
		ClassID: "class-1",
		Subjects: []Subject{
			{ID: "math", Name: "Mathematics", WeeklyHours: 5},
			{ID: "sci", Name: "Science", WeeklyHours: 3},
			{ID: "art", Name: "Art", WeeklyHours: 2},
		},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
			{TeacherID: "t2", TeacherName: "Teacher Two", SubjectID: "math"},
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "sci"},
			{TeacherID: "t2", TeacherName: "Teacher Two", SubjectID: "art"},
		},
		TeacherAvailability: concatAvailability("t1", "t2"),
		TimeSlots: append(
			weekGrid(5, []string{"07:30", "08:30", "09:30", "10:30", "13:00"}),
			TimeSlot{ID: "break-1", DayOfWeek: 1, StartTime: "12:00", EndTime: "13:00", IsBreak: true},
		),
	}
	slots := slotIndex(constraints.TimeSlots)

	for seed := int64(0); seed < 10; seed++ {
		constraints.Seed = seed
		result := Generate(constraints)

		// no teacher double-booking, no break placements, availability respected
		booked := make(map[string]bool)
		hoursBySubject := make(map[string]int)
		for _, entry := range result.Timetable {
			slot, ok := slots[entry.TimeSlotID]
			require.True(t, ok, "seed %d: unknown slot %s", seed, entry.TimeSlotID)
			assert.False(t, slot.IsBreak, "seed %d: placement on break slot", seed)

			key := entry.TeacherID + "|" + entry.TimeSlotID
			assert.False(t, booked[key], "seed %d: teacher %s double-booked in %s", seed, entry.TeacherID, entry.TimeSlotID)
			booked[key] = true

			covered := false
			for _, window := range constraints.TeacherAvailability {
				if window.TeacherID == entry.TeacherID && window.DayOfWeek == slot.DayOfWeek &&
					slot.StartTime >= window.StartTime && slot.EndTime <= window.EndTime {
					covered = true
					break
				}
			}
			assert.True(t, covered, "seed %d: placement outside availability", seed)
			hoursBySubject[entry.SubjectID]++
		}

		// quota monotonicity with the documented +1 double-period tolerance
		for _, subject := range constraints.Subjects {
			assert.LessOrEqual(t, hoursBySubject[subject.ID], subject.WeeklyHours+1,
				"seed %d: subject %s over quota", seed, subject.ID)
		}
	}
}

func TestGeneratePreserveExisting(t *testing.T) {
	existing := []Entry{
		{ClassID: "class-1", SubjectID: "sci", TeacherID: "t1", TimeSlotID: "d1-08:00", AcademicYear: "2026/2027", Status: "active"},
	}
	result := Generate(Constraints{
		ClassID:      "class-1",
		AcademicYear: "2026/2027",
		Subjects:     []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 2}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
		},
		TeacherAvailability: weekdayAvailability("t1"),
		TimeSlots: []TimeSlot{
			teachingSlot(1, "08:00", "09:00"),
			teachingSlot(1, "09:00", "10:00"),
			teachingSlot(2, "08:00", "09:00"),
		},
		ExistingTimetable: existing,
		PreserveExisting:  true,
		Seed:              11,
	})

	require.NotEmpty(t, result.Timetable)
	preserved := result.Timetable[0]
	assert.Equal(t, "sci", preserved.SubjectID)
	assert.Equal(t, "t1", preserved.TeacherID)
	assert.Equal(t, "d1-08:00", preserved.TimeSlotID)
	assert.Equal(t, StatusDraft, preserved.Status)

	seen := make(map[string]bool)
	for _, entry := range result.Timetable {
		assert.False(t, seen[entry.TimeSlotID], "slot %s assigned twice", entry.TimeSlotID)
		seen[entry.TimeSlotID] = true
	}
}

func TestGenerateSkipsZeroHourSubjects(t *testing.T) {
	result := Generate(Constraints{
		ClassID: "class-1",
		Subjects: []Subject{
			{ID: "math", Name: "Mathematics", WeeklyHours: 1},
			{ID: "idle", Name: "Idle Subject", WeeklyHours: 0},
		},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
		},
		TeacherAvailability: weekdayAvailability("t1"),
		TimeSlots:           []TimeSlot{teachingSlot(1, "08:00", "09:00")},
		Seed:                5,
	})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Statistics.TotalSubjects)
	_, ok := result.Distribution["idle"]
	assert.False(t, ok)
}

func TestGenerateNoTeachingSlots(t *testing.T) {
	result := Generate(Constraints{
		ClassID:  "class-1",
		Subjects: []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 2}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
		},
		TeacherAvailability: weekdayAvailability("t1"),
		TimeSlots: []TimeSlot{
			{ID: "break-1", DayOfWeek: 1, StartTime: "10:00", EndTime: "10:30", IsBreak: true},
		},
		Seed: 5,
	})

	assert.False(t, result.Success)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, ConflictQuotaExceeded, result.Conflicts[0].Type)
	assert.Contains(t, result.Conflicts[0].Message, "could not place any hours")
}

func TestGenerateNoQualifiedTeacher(t *testing.T) {
	result := Generate(Constraints{
		ClassID:   "class-1",
		Subjects:  []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 2}},
		TimeSlots: []TimeSlot{teachingSlot(1, "08:00", "09:00")},
		Seed:      5,
	})

	assert.False(t, result.Success)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, ConflictNoTeacherAvailable, result.Conflicts[0].Type)
	assert.Equal(t, "math", result.Conflicts[0].SubjectID)
	assert.Empty(t, result.Timetable)
}

func TestGenerateMorningHeavyPrefersMorning(t *testing.T) {
	result := Generate(Constraints{
		ClassID:  "class-1",
		Subjects: []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 2}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
		},
		TeacherAvailability: weekdayAvailability("t1"),
		TimeSlots: []TimeSlot{
			teachingSlot(1, "08:00", "09:00"),
			teachingSlot(1, "13:00", "14:00"),
			teachingSlot(2, "08:00", "09:00"),
			teachingSlot(2, "13:00", "14:00"),
		},
		Strategy: StrategyMorningHeavy,
		Seed:     9,
	})
	slots := slotIndex(weekGrid(2, []string{"08:00", "13:00"}))

	require.Len(t, result.Timetable, 2)
	for _, entry := range result.Timetable {
		assert.Less(t, slots[entry.TimeSlotID].StartTime, "11:00")
	}
}

func TestGenerateAfternoonHeavyPrefersAfternoon(t *testing.T) {
	result := Generate(Constraints{
		ClassID:  "class-1",
		Subjects: []Subject{{ID: "math", Name: "Mathematics", WeeklyHours: 2}},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "math"},
		},
		TeacherAvailability: weekdayAvailability("t1"),
		TimeSlots: []TimeSlot{
			teachingSlot(1, "08:00", "09:00"),
			teachingSlot(1, "13:00", "14:00"),
			teachingSlot(2, "08:00", "09:00"),
			teachingSlot(2, "13:00", "14:00"),
		},
		Strategy: StrategyAfternoonHeavy,
		Seed:     9,
	})
	slots := slotIndex(weekGrid(2, []string{"08:00", "13:00"}))

	require.Len(t, result.Timetable, 2)
	for _, entry := range result.Timetable {
		assert.GreaterOrEqual(t, slots[entry.TimeSlotID].StartTime, "13:00")
	}
}

func TestGenerateScarceSubjectScheduledFirst(t *testing.T) {
	// equal quotas: the subject with fewer qualified teachers wins the only slot
	result := Generate(Constraints{
		ClassID: "class-1",
		Subjects: []Subject{
			{ID: "rich", Name: "Rich Subject", WeeklyHours: 1},
			{ID: "scarce", Name: "Scarce Subject", WeeklyHours: 1},
		},
		TeacherAssignments: []TeacherAssignment{
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "rich"},
			{TeacherID: "t2", TeacherName: "Teacher Two", SubjectID: "rich"},
			{TeacherID: "t1", TeacherName: "Teacher One", SubjectID: "scarce"},
		},
		TeacherAvailability: concatAvailability("t1", "t2"),
		TimeSlots:           []TimeSlot{teachingSlot(1, "08:00", "09:00")},
		Seed:                2,
	})

	require.NotEmpty(t, result.Timetable)
	assert.Equal(t, "scarce", result.Timetable[0].SubjectID)
}

// --- Fixtures ---

func teachingSlot(day int, start, end string) TimeSlot {
	return TimeSlot{
		ID:        fmt.Sprintf("d%d-%s", day, start),
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	}
}

func weekGrid(days int, starts []string) []TimeSlot {
	var slots []TimeSlot
	for day := 1; day <= days; day++ {
		for _, start := range starts {
			slots = append(slots, TimeSlot{
				ID:        fmt.Sprintf("d%d-%s", day, start),
				DayOfWeek: day,
				StartTime: start,
				EndTime:   addHour(start),
			})
		}
	}
	return slots
}

func addHour(start string) string {
	var hour, minute int
	fmt.Sscanf(start, "%d:%d", &hour, &minute)
	return fmt.Sprintf("%02d:%02d", hour+1, minute)
}

func weekdayAvailability(teacherID string) []AvailabilitySlot {
	var windows []AvailabilitySlot
	for day := 1; day <= 5; day++ {
		windows = append(windows, AvailabilitySlot{
			TeacherID: teacherID,
			DayOfWeek: day,
			StartTime: "07:00",
			EndTime:   "17:00",
		})
	}
	return windows
}

func concatAvailability(teacherIDs ...string) []AvailabilitySlot {
	var windows []AvailabilitySlot
	for _, id := range teacherIDs {
		windows = append(windows, weekdayAvailability(id)...)
	}
	return windows
}

func slotIndex(slots []TimeSlot) map[string]TimeSlot {
	index := make(map[string]TimeSlot, len(slots))
	for _, slot := range slots {
		index[slot.ID] = slot
	}
	return index
}

func hasConflictType(conflicts []Conflict, conflictType string) bool {
	for _, conflict := range conflicts {
		if conflict.Type == conflictType {
			return true
		}
	}
	return false
}
