package dto

// GenerateTimetableRequest instructs the generator to build a draft
// timetable for one class. Seed pins the run for reproducibility; when
// omitted the service picks a fresh one per run.
type GenerateTimetableRequest struct {
	Strategy         string `json:"strategy" validate:"omitempty,oneof=balanced morning-heavy afternoon-heavy"`
	PreserveExisting bool   `json:"preserveExisting"`
	Seed             *int64 `json:"seed"`
}

// ResolveTimetableRequest maps ambiguous time slots to the teacher a human
// chose for each.
type ResolveTimetableRequest struct {
	Selections map[string]string `json:"selections" validate:"required,min=1"`
}

// BulkGenerateRequest triggers background generation for every class.
type BulkGenerateRequest struct {
	Strategy         string `json:"strategy" validate:"omitempty,oneof=balanced morning-heavy afternoon-heavy"`
	PreserveExisting bool   `json:"preserveExisting"`
}

// BulkGenerateResponse reports how many class jobs were enqueued.
type BulkGenerateResponse struct {
	ClassesQueued int `json:"classesQueued"`
}

// GenerationJobPayload is the queue payload for one background generation.
type GenerationJobPayload struct {
	ClassID          string `json:"classId"`
	Strategy         string `json:"strategy"`
	PreserveExisting bool   `json:"preserveExisting"`
}
