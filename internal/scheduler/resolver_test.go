package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolverFixture() Result {
	return Result{
		Success: true,
		Timetable: []Entry{
			{ClassID: "class-1", SubjectID: "math", TeacherID: "t1", TimeSlotID: "slot-1", Status: StatusDraft},
			{ClassID: "class-1", SubjectID: "math", TeacherID: "t1", TimeSlotID: "slot-2", Status: StatusDraft},
			{ClassID: "class-1", SubjectID: "sci", TeacherID: "t3", TimeSlotID: "slot-3", Status: StatusDraft},
		},
		MultiTeacherSlots: []MultiTeacherOption{
			{SubjectID: "math", TimeSlotID: "slot-1", Teachers: []TeacherOption{
				{TeacherID: "t1", TeacherName: "Teacher One", Reason: "qualified and available"},
				{TeacherID: "t2", TeacherName: "Teacher Two", Reason: "qualified and available"},
			}},
			{SubjectID: "math", TimeSlotID: "slot-2", Teachers: []TeacherOption{
				{TeacherID: "t1", TeacherName: "Teacher One", Reason: "qualified and available"},
				{TeacherID: "t2", TeacherName: "Teacher Two", Reason: "qualified and available"},
			}},
		},
	}
}

func TestResolveAppliesSelection(t *testing.T) {
	original := resolverFixture()

	resolved := ResolveMultiTeacherSelections(original, map[string]string{"slot-1": "t2"})

	assert.Equal(t, "t2", resolved.Timetable[0].TeacherID)
	assert.Equal(t, "t1", resolved.Timetable[1].TeacherID)
	require.Len(t, resolved.MultiTeacherSlots, 1)
	assert.Equal(t, "slot-2", resolved.MultiTeacherSlots[0].TimeSlotID)

	// input untouched
	assert.Equal(t, "t1", original.Timetable[0].TeacherID)
	assert.Len(t, original.MultiTeacherSlots, 2)
}

func TestResolveIgnoresUnknownSlots(t *testing.T) {
	resolved := ResolveMultiTeacherSelections(resolverFixture(), map[string]string{"missing": "t9"})

	assert.Equal(t, resolverFixture().Timetable, resolved.Timetable)
	assert.Len(t, resolved.MultiTeacherSlots, 2)
}

func TestResolveIdempotent(t *testing.T) {
	selections := map[string]string{"slot-1": "t2", "slot-2": "t2"}

	once := ResolveMultiTeacherSelections(resolverFixture(), selections)
	twice := ResolveMultiTeacherSelections(once, selections)

	assert.Equal(t, once.Timetable, twice.Timetable)
	assert.Equal(t, once.MultiTeacherSlots, twice.MultiTeacherSlots)
	assert.Empty(t, twice.MultiTeacherSlots)
}

func TestResolveEmptySelections(t *testing.T) {
	original := resolverFixture()
	resolved := ResolveMultiTeacherSelections(original, nil)
	assert.Equal(t, original, resolved)
}
