package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the job lifecycle states.
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusDone       Status = "DONE"
	StatusFailed     Status = "FAILED"
)

// Mode selects how far the pipeline takes a job.
type Mode string

const (
	// ModeDraft stops at the geometric composite.
	ModeDraft Mode = "draft"
	// ModeFinal refines the composite through the generation gateway.
	ModeFinal Mode = "final"
)

// NormalizeMode sanitizes free-form user input into a supported mode.
func NormalizeMode(mode string) Mode {
	if Mode(mode) == ModeDraft {
		return ModeDraft
	}
	return ModeFinal
}

// ImageRef points at an input image by local path or by URL. Exactly one of
// the two fields is set on a valid reference.
type ImageRef struct {
	Path string
	URL  string
}

// IsZero reports whether the reference carries no source at all.
func (r ImageRef) IsZero() bool {
	return r.Path == "" && r.URL == ""
}

// Preferences is the bundle of generation preferences forwarded to the
// gateway when a job runs in final mode.
type Preferences struct {
	PreserveFace       bool
	PreserveBackground bool
	RealismLevel       int
}

const (
	DefaultMaxRetries   = 2
	MaxRetriesCeiling   = 3
	DefaultRealismLevel = 3
)

// Job is the unit of work and its full lifecycle record. The store owns the
// authoritative copy; everything else works on value copies for the duration
// of one pipeline pass.
type Job struct {
	ID     string
	Status Status

	PersonImage  ImageRef
	GarmentImage ImageRef
	ProductID    string
	GarmentType  string
	Mode         Mode
	Preferences  Preferences

	RetryCount int
	MaxRetries int

	ResultURL    string
	QualityScore float64
	ErrorKind    ErrorKind
	ErrorMessage string

	DebugArtifacts map[string]string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// NewJob creates a queued job with a fresh id and default options.
func NewJob(person, garment ImageRef) Job {
	now := time.Now().UTC()
	return Job{
		ID:           uuid.NewString(),
		Status:       StatusQueued,
		PersonImage:  person,
		GarmentImage: garment,
		Mode:         ModeFinal,
		Preferences: Preferences{
			PreserveFace:       true,
			PreserveBackground: true,
			RealismLevel:       DefaultRealismLevel,
		},
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// transitions is the closed set of legal status edges. PROCESSING -> QUEUED is
// the single backward edge, used only by the quality-retry path and gated by
// CanRetry in MarkRequeued.
var transitions = map[Status]map[Status]bool{
	StatusQueued:     {StatusProcessing: true},
	StatusProcessing: {StatusDone: true, StatusFailed: true, StatusQueued: true},
}

func (j *Job) transition(to Status) error {
	if !transitions[j.Status][to] {
		return fmt.Errorf("job %s: illegal transition %s -> %s", j.ID, j.Status, to)
	}
	j.Status = to
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// CanRetry reports whether the quality-retry path may requeue this job.
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// MarkProcessing moves the job into PROCESSING. StartedAt is set only on the
// first call, so retried jobs keep their original start time.
func (j *Job) MarkProcessing() error {
	if err := j.transition(StatusProcessing); err != nil {
		return err
	}
	if j.StartedAt == nil {
		t := j.UpdatedAt
		j.StartedAt = &t
	}
	return nil
}

// MarkDone records the result and moves the job to its terminal DONE state.
func (j *Job) MarkDone(resultURL string, qualityScore float64) error {
	if err := j.transition(StatusDone); err != nil {
		return err
	}
	j.ResultURL = resultURL
	j.QualityScore = qualityScore
	t := j.UpdatedAt
	j.CompletedAt = &t
	return nil
}

// MarkFailed records the error and moves the job to its terminal FAILED state.
func (j *Job) MarkFailed(kind ErrorKind, message string) error {
	if err := j.transition(StatusFailed); err != nil {
		return err
	}
	j.ErrorKind = kind
	j.ErrorMessage = message
	t := j.UpdatedAt
	j.CompletedAt = &t
	return nil
}

// MarkRequeued takes the quality-retry edge back to QUEUED, consuming one
// retry. It refuses when retries are exhausted.
func (j *Job) MarkRequeued() error {
	if !j.CanRetry() {
		return fmt.Errorf("job %s: retries exhausted (%d/%d)", j.ID, j.RetryCount, j.MaxRetries)
	}
	if err := j.transition(StatusQueued); err != nil {
		return err
	}
	j.RetryCount++
	return nil
}
