package scheduler

// Strategy selects which half of the day single-slot scoring favours.
type Strategy string

const (
	StrategyBalanced       Strategy = "balanced"
	StrategyMorningHeavy   Strategy = "morning-heavy"
	StrategyAfternoonHeavy Strategy = "afternoon-heavy"
)

// Conflict types. The three placement-failure variants stay distinguishable
// so callers can render different remediation guidance for each.
const (
	ConflictTeacherDoubleBooked = "teacher_double_booked"
	ConflictTeacherUnavailable  = "teacher_unavailable"
	ConflictQuotaExceeded       = "subject_quota_exceeded"
	ConflictNoTeacherAvailable  = "no_teacher_available"
)

// StatusDraft is the status stamped on every entry the engine emits.
const StatusDraft = "draft"

// Subject is a class requirement: a subject with a weekly-hour quota.
// Subjects with a zero quota are excluded from scheduling.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WeeklyHours int    `json:"weeklyHours"`
}

// TeacherAssignment marks a teacher as qualified and assigned to teach a
// subject for the class being scheduled.
type TeacherAssignment struct {
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	SubjectID   string `json:"subjectId"`
	SubjectName string `json:"subjectName"`
}

// AvailabilitySlot is one contiguous window in which a teacher may be
// scheduled. Times are lexically comparable "HH:MM" strings; days are 1-7
// Monday-first, matching TimeSlot.
type AvailabilitySlot struct {
	TeacherID string `json:"teacherId"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// TimeSlot is one cell of the fixed weekly grid. Break slots are never
// assignable.
type TimeSlot struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsBreak   bool   `json:"isBreak"`
}

// Entry is one placed (subject, teacher, time slot) triple.
type Entry struct {
	ClassID      string `json:"classId"`
	SubjectID    string `json:"subjectId"`
	TeacherID    string `json:"teacherId"`
	TimeSlotID   string `json:"timeSlotId"`
	AcademicYear string `json:"academicYear"`
	Status       string `json:"status"`
}

// Conflict describes a placement failure. Conflicts are descriptive, not
// fatal: the engine always returns a best-effort result.
type Conflict struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	SubjectID  string `json:"subjectId"`
	TimeSlotID string `json:"timeSlotId,omitempty"`
	TeacherID  string `json:"teacherId,omitempty"`
}

// TeacherOption is one candidate teacher for an ambiguous slot.
type TeacherOption struct {
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Reason      string `json:"reason"`
}

// MultiTeacherOption is surfaced whenever more than one qualified, available
// teacher could fill a slot. The engine auto-picks the first candidate but
// flags the ambiguity for human override.
type MultiTeacherOption struct {
	SubjectID  string          `json:"subjectId"`
	TimeSlotID string          `json:"timeSlotId"`
	Teachers   []TeacherOption `json:"teachers"`
}

// Statistics summarises a scheduling run.
type Statistics struct {
	TotalSlotsNeeded  int     `json:"totalSlotsNeeded"`
	SlotsPlaced       int     `json:"slotsPlaced"`
	SlotsConflicted   int     `json:"slotsConflicted"`
	SubjectsPlaced    int     `json:"subjectsPlaced"`
	TotalSubjects     int     `json:"totalSubjects"`
	DoublePeriods     int     `json:"doublePeriods"`
	DaysWithClasses   int     `json:"daysWithClasses"`
	DistributionScore float64 `json:"distributionScore"`
}

// SubjectDistribution reports how one subject's hours spread across the week.
type SubjectDistribution struct {
	SubjectID    string      `json:"subjectId"`
	SubjectName  string      `json:"subjectName"`
	TotalHours   int         `json:"totalHours"`
	HoursByDay   map[int]int `json:"hoursByDay"`
	DaysUsed     int         `json:"daysUsed"`
	MetDayTarget bool        `json:"metDayTarget"`
	Balanced     bool        `json:"balanced"`
}

// Result is the engine's full output.
type Result struct {
	Success           bool                           `json:"success"`
	Timetable         []Entry                        `json:"timetable"`
	Conflicts         []Conflict                     `json:"conflicts"`
	MultiTeacherSlots []MultiTeacherOption           `json:"multiTeacherSlots"`
	Statistics        Statistics                     `json:"statistics"`
	Distribution      map[string]SubjectDistribution `json:"distribution"`
}

// Constraints is the full input snapshot for one class. The engine never
// mutates any of the slices.
type Constraints struct {
	ClassID             string
	AcademicYear        string
	Subjects            []Subject
	TeacherAssignments  []TeacherAssignment
	TeacherAvailability []AvailabilitySlot
	TimeSlots           []TimeSlot
	ExistingTimetable   []Entry
	PreserveExisting    bool
	Strategy            Strategy
	// Seed drives the run's deterministic generator. Callers wanting
	// schedule variety pass a fresh value per run; tests pin it.
	Seed int64
}
