package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/classgrid/classgrid-api/internal/dto"
	"github.com/classgrid/classgrid-api/internal/models"
	"github.com/classgrid/classgrid-api/internal/repository"
	"github.com/classgrid/classgrid-api/internal/scheduler"
	appErrors "github.com/classgrid/classgrid-api/pkg/errors"
	"github.com/classgrid/classgrid-api/pkg/export"
	"github.com/classgrid/classgrid-api/pkg/jobs"
)

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type classSubjectLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassSubjectDetail, error)
}

type assignmentLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.TeacherAssignmentDetail, error)
}

type availabilityLister interface {
	ListByTeachers(ctx context.Context, teacherIDs []string) ([]models.TeacherAvailability, error)
}

type timeSlotLister interface {
	List(ctx context.Context) ([]models.TimeSlot, error)
}

type timetableStore interface {
	ListByClass(ctx context.Context, classID, academicYear string) ([]models.TimetableEntryDetail, error)
	LockClassTx(ctx context.Context, tx *sqlx.Tx, classID string) error
	ReplaceDraftTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear string, entries []models.TimetableEntry) error
	UpdateTeacherTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear, timeSlotID, teacherID string) error
	ActivateDraftTx(ctx context.Context, tx *sqlx.Tx, classID, academicYear string) (int64, error)
}

type resultStore interface {
	Save(ctx context.Context, classID string, result *scheduler.Result) error
	Load(ctx context.Context, classID string) (*scheduler.Result, error)
	Delete(ctx context.Context, classID string) error
}

type generationObserver interface {
	ObserveGeneration(success bool, conflicts int, score float64, duration time.Duration)
}

type generationQueue interface {
	Enqueue(job jobs.Job) error
}

// JobTypeGenerate is the queue job type for one class generation.
const JobTypeGenerate = "timetable.generate"

// TimetableConfig defines scheduling defaults.
type TimetableConfig struct {
	AcademicYear    string
	DefaultStrategy string
}

// TimetableService orchestrates timetable generation, resolution, activation
// and export for classes.
type TimetableService struct {
	db           *sqlx.DB
	classes      classReader
	subjects     classSubjectLister
	assignments  assignmentLister
	availability availabilityLister
	timeSlots    timeSlotLister
	timetables   timetableStore
	results      resultStore
	observer     generationObserver
	queue        generationQueue
	validator    *validator.Validate
	logger       *zap.Logger
	config       TimetableConfig
}

// NewTimetableService constructs a TimetableService instance.
func NewTimetableService(
	db *sqlx.DB,
	classes classReader,
	subjects classSubjectLister,
	assignments assignmentLister,
	availability availabilityLister,
	timeSlots timeSlotLister,
	timetables timetableStore,
	results resultStore,
	observer generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	config TimetableConfig,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DefaultStrategy == "" {
		config.DefaultStrategy = string(scheduler.StrategyBalanced)
	}
	return &TimetableService{
		db:           db,
		classes:      classes,
		subjects:     subjects,
		assignments:  assignments,
		availability: availability,
		timeSlots:    timeSlots,
		timetables:   timetables,
		results:      results,
		observer:     observer,
		validator:    validate,
		logger:       logger,
		config:       config,
	}
}

// SetQueue attaches the background queue used by bulk generation. Wired after
// construction because the queue handler itself calls back into the service.
func (s *TimetableService) SetQueue(queue generationQueue) {
	s.queue = queue
}

// Generate runs the scheduling engine for one class and stores the resulting
// draft atomically, replacing any previous draft for the academic year.
func (s *TimetableService) Generate(ctx context.Context, classID string, req dto.GenerateTimetableRequest) (*scheduler.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	constraints, err := s.buildConstraints(ctx, classID, req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result := scheduler.Generate(*constraints)
	elapsed := time.Since(started)

	if err := s.persistDraft(ctx, classID, result.Timetable); err != nil {
		return nil, err
	}

	if err := s.results.Save(ctx, classID, &result); err != nil {
		s.logger.Warn("failed to cache generation result", zap.String("class_id", classID), zap.Error(err))
	}

	if s.observer != nil {
		s.observer.ObserveGeneration(result.Success, len(result.Conflicts), result.Statistics.DistributionScore, elapsed)
	}

	s.logger.Info("timetable generated",
		zap.String("class_id", classID),
		zap.Bool("success", result.Success),
		zap.Int("placed", result.Statistics.SlotsPlaced),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("took", elapsed),
	)
	return &result, nil
}

// Resolve applies manual teacher selections to the class's latest generation
// result and updates the stored draft accordingly.
func (s *TimetableService) Resolve(ctx context.Context, classID string, req dto.ResolveTimetableRequest) (*scheduler.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolve payload")
	}

	if _, err := s.findClass(ctx, classID); err != nil {
		return nil, err
	}

	cached, err := s.results.Load(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNoPendingResult, "no generation result to resolve, generate first")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation result")
	}

	resolved := scheduler.ResolveMultiTeacherSelections(*cached, req.Selections)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.timetables.LockClassTx(ctx, tx, classID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock class")
	}
	for slotID, teacherID := range req.Selections {
		if err := s.timetables.UpdateTeacherTx(ctx, tx, classID, s.config.AcademicYear, slotID, teacherID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply teacher selection")
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit teacher selections")
	}

	if err := s.results.Save(ctx, classID, &resolved); err != nil {
		s.logger.Warn("failed to cache resolved result", zap.String("class_id", classID), zap.Error(err))
	}
	return &resolved, nil
}

// Get returns the stored timetable for one class.
func (s *TimetableService) Get(ctx context.Context, classID string) ([]models.TimetableEntryDetail, error) {
	if _, err := s.findClass(ctx, classID); err != nil {
		return nil, err
	}
	entries, err := s.timetables.ListByClass(ctx, classID, s.config.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return entries, nil
}

// Activate promotes the class's draft timetable to active, replacing the
// previous active one. Returns the number of promoted entries.
func (s *TimetableService) Activate(ctx context.Context, classID string) (int64, error) {
	if _, err := s.findClass(ctx, classID); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.timetables.LockClassTx(ctx, tx, classID); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock class")
	}
	promoted, err := s.timetables.ActivateDraftTx(ctx, tx, classID, s.config.AcademicYear)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate draft")
	}
	if promoted == 0 {
		return 0, appErrors.ErrNoDraftTimetable
	}
	if err := tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit activation")
	}

	if err := s.results.Delete(ctx, classID); err != nil {
		s.logger.Warn("failed to drop cached result after activation", zap.String("class_id", classID), zap.Error(err))
	}
	return promoted, nil
}

// Export renders the class timetable as CSV or PDF bytes.
func (s *TimetableService) Export(ctx context.Context, classID, format string) ([]byte, string, error) {
	class, err := s.findClass(ctx, classID)
	if err != nil {
		return nil, "", err
	}
	entries, err := s.timetables.ListByClass(ctx, classID, s.config.AcademicYear)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Subject", "Teacher", "Status"},
	}
	for _, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":     dayName(entry.DayOfWeek),
			"Start":   entry.StartTime,
			"End":     entry.EndTime,
			"Subject": entry.SubjectName,
			"Teacher": entry.TeacherName,
			"Status":  entry.Status,
		})
	}

	switch format {
	case "csv", "":
		payload, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Timetable %s %s", class.Name, s.config.AcademicYear)
		payload, err := export.NewPDFExporter().Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format, use csv or pdf")
	}
}

// GenerateAll queues a generation job for every class. Returns the number of
// classes queued.
func (s *TimetableService) GenerateAll(ctx context.Context, req dto.BulkGenerateRequest) (int, error) {
	if s.queue == nil {
		return 0, appErrors.Clone(appErrors.ErrPreconditionFailed, "bulk generation queue is not running")
	}
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}

	classIDs, err := s.classes.ListIDs(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	queued := 0
	for _, classID := range classIDs {
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: JobTypeGenerate,
			Payload: dto.GenerationJobPayload{
				ClassID:          classID,
				Strategy:         req.Strategy,
				PreserveExisting: req.PreserveExisting,
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to queue generation", zap.String("class_id", classID), zap.Error(err))
			continue
		}
		queued++
	}
	return queued, nil
}

// HandleGenerationJob is the queue handler for bulk generation jobs.
func (s *TimetableService) HandleGenerationJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(dto.GenerationJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	_, err := s.Generate(ctx, payload.ClassID, dto.GenerateTimetableRequest{
		Strategy:         payload.Strategy,
		PreserveExisting: payload.PreserveExisting,
	})
	return err
}

func (s *TimetableService) findClass(ctx context.Context, classID string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch class")
	}
	return class, nil
}

func (s *TimetableService) buildConstraints(ctx context.Context, classID string, req dto.GenerateTimetableRequest) (*scheduler.Constraints, error) {
	if _, err := s.findClass(ctx, classID); err != nil {
		return nil, err
	}

	classSubjects, err := s.subjects.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	if len(classSubjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "class has no subjects configured")
	}

	teacherAssignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignments")
	}

	slots, err := s.timeSlots.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no time slots configured")
	}

	teacherIDs := make([]string, 0, len(teacherAssignments))
	seen := make(map[string]bool, len(teacherAssignments))
	for _, assignment := range teacherAssignments {
		if !seen[assignment.TeacherID] {
			seen[assignment.TeacherID] = true
			teacherIDs = append(teacherIDs, assignment.TeacherID)
		}
	}
	windows, err := s.availability.ListByTeachers(ctx, teacherIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher availability")
	}

	constraints := &scheduler.Constraints{
		ClassID:          classID,
		AcademicYear:     s.config.AcademicYear,
		PreserveExisting: req.PreserveExisting,
		Strategy:         scheduler.Strategy(req.Strategy),
	}
	if req.Strategy == "" {
		constraints.Strategy = scheduler.Strategy(s.config.DefaultStrategy)
	}
	if req.Seed != nil {
		constraints.Seed = *req.Seed
	} else {
		constraints.Seed = time.Now().UnixNano()
	}

	for _, cs := range classSubjects {
		constraints.Subjects = append(constraints.Subjects, scheduler.Subject{
			ID:          cs.SubjectID,
			Name:        cs.SubjectName,
			WeeklyHours: cs.WeeklyHours,
		})
	}
	for _, assignment := range teacherAssignments {
		constraints.TeacherAssignments = append(constraints.TeacherAssignments, scheduler.TeacherAssignment{
			TeacherID:   assignment.TeacherID,
			TeacherName: assignment.TeacherName,
			SubjectID:   assignment.SubjectID,
			SubjectName: assignment.SubjectName,
		})
	}
	for _, window := range windows {
		constraints.TeacherAvailability = append(constraints.TeacherAvailability, scheduler.AvailabilitySlot{
			TeacherID: window.TeacherID,
			DayOfWeek: window.DayOfWeek,
			StartTime: window.StartTime,
			EndTime:   window.EndTime,
		})
	}
	for _, slot := range slots {
		constraints.TimeSlots = append(constraints.TimeSlots, scheduler.TimeSlot{
			ID:        slot.ID,
			DayOfWeek: slot.DayOfWeek,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			IsBreak:   slot.IsBreak,
		})
	}

	if req.PreserveExisting {
		existing, err := s.timetables.ListByClass(ctx, classID, s.config.AcademicYear)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing timetable")
		}
		for _, entry := range existing {
			constraints.ExistingTimetable = append(constraints.ExistingTimetable, scheduler.Entry{
				ClassID:      entry.ClassID,
				SubjectID:    entry.SubjectID,
				TeacherID:    entry.TeacherID,
				TimeSlotID:   entry.TimeSlotID,
				AcademicYear: entry.AcademicYear,
				Status:       entry.Status,
			})
		}
	}
	return constraints, nil
}

func (s *TimetableService) persistDraft(ctx context.Context, classID string, entries []scheduler.Entry) error {
	rows := make([]models.TimetableEntry, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, models.TimetableEntry{
			ClassID:      entry.ClassID,
			SubjectID:    entry.SubjectID,
			TeacherID:    entry.TeacherID,
			TimeSlotID:   entry.TimeSlotID,
			AcademicYear: entry.AcademicYear,
			Status:       models.TimetableStatusDraft,
		})
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.timetables.LockClassTx(ctx, tx, classID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock class")
	}
	if err := s.timetables.ReplaceDraftTx(ctx, tx, classID, s.config.AcademicYear, rows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store draft timetable")
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit draft timetable")
	}
	return nil
}

var dayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
	6: "Saturday",
	7: "Sunday",
}

func dayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("Day %d", day)
}
