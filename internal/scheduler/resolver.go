package scheduler

// ResolveMultiTeacherSelections applies human teacher choices to a generated
// result: every timetable entry whose time slot appears in selections gets
// the chosen teacher, and the matching multi-teacher options are dropped.
//
// Overrides are trusted as-is; callers are responsible for picking teachers
// from the option's candidate list, so no availability re-validation happens
// here. Selection keys that match no entry are ignored. The input result is
// not mutated and the operation is idempotent.
func ResolveMultiTeacherSelections(result Result, selections map[string]string) Result {
	if len(selections) == 0 {
		return result
	}

	resolved := result

	resolved.Timetable = make([]Entry, len(result.Timetable))
	copy(resolved.Timetable, result.Timetable)
	for i := range resolved.Timetable {
		if teacherID, ok := selections[resolved.Timetable[i].TimeSlotID]; ok {
			resolved.Timetable[i].TeacherID = teacherID
		}
	}

	resolved.MultiTeacherSlots = make([]MultiTeacherOption, 0, len(result.MultiTeacherSlots))
	for _, option := range result.MultiTeacherSlots {
		if _, ok := selections[option.TimeSlotID]; ok {
			continue
		}
		resolved.MultiTeacherSlots = append(resolved.MultiTeacherSlots, option)
	}

	return resolved
}
