// Package pipeline drains the job queue and runs each try-on job through the
// full processing chain: load, pose, segment, align, composite, score,
// refine, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog"

	"tryon/internal/align"
	"tryon/internal/anchors"
	"tryon/internal/domain"
	"tryon/internal/imaging"
	"tryon/internal/providers/generate"
	"tryon/internal/quality"
	"tryon/internal/storage"
	"tryon/internal/store"
	"tryon/internal/vision"
)

// Config tunes the orchestrator.
type Config struct {
	QualityThreshold   float64
	PollTimeout        time.Duration
	SaveDebugArtifacts bool
	PoseConfidence     float64
}

// Orchestrator owns the worker loop. One orchestrator runs one loop; run
// several goroutines over the same collaborators to scale out.
type Orchestrator struct {
	store     *store.Store
	loader    *imaging.Loader
	pose      vision.PoseEstimator
	segmenter vision.Segmenter
	gateway   generate.Generator
	files     *storage.FileStore
	cfg       Config
	log       zerolog.Logger
}

// New wires an orchestrator from its collaborators.
func New(
	st *store.Store,
	loader *imaging.Loader,
	pose vision.PoseEstimator,
	segmenter vision.Segmenter,
	gateway generate.Generator,
	files *storage.FileStore,
	cfg Config,
	log zerolog.Logger,
) *Orchestrator {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Second
	}
	if cfg.PoseConfidence <= 0 {
		cfg.PoseConfidence = 0.5
	}
	return &Orchestrator{
		store:     st,
		loader:    loader,
		pose:      pose,
		segmenter: segmenter,
		gateway:   gateway,
		files:     files,
		cfg:       cfg,
		log:       log,
	}
}

// Run drains the queue until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info().Msg("pipeline worker started")
	for {
		id, ok, err := o.store.NextQueued(ctx, o.cfg.PollTimeout)
		if err != nil {
			o.log.Info().Msg("pipeline worker stopping")
			return err
		}
		if !ok {
			continue
		}
		o.runJob(ctx, id)
	}
}

// runJob processes one job end to end, recovering from panics so a single
// bad job cannot take the worker loop down.
func (o *Orchestrator) runJob(ctx context.Context, id string) {
	job, err := o.store.Get(id)
	if err != nil {
		o.log.Error().Err(err).Str("job_id", id).Msg("dequeued unknown job")
		return
	}
	if err := job.MarkProcessing(); err != nil {
		o.log.Error().Err(err).Str("job_id", id).Msg("cannot start job")
		return
	}
	if err := o.store.Update(job); err != nil {
		o.log.Error().Err(err).Str("job_id", id).Msg("persist processing state")
		return
	}

	defer func() {
		if r := recover(); r == nil {
			return
		} else if cur, err := o.store.Get(id); err == nil && cur.Status == domain.StatusProcessing {
			o.log.Error().Str("job_id", id).Interface("panic", r).Msg("pipeline panicked")
			o.fail(&cur, domain.E(domain.KindUnknown, "internal error: %v", r))
		}
	}()

	start := time.Now()
	o.process(ctx, &job)
	o.log.Info().
		Str("job_id", id).
		Str("status", string(job.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("job finished pass")
}

func (o *Orchestrator) process(ctx context.Context, job *domain.Job) {
	person, err := o.loader.Load(ctx, job.PersonImage)
	if err != nil {
		o.fail(job, fmt.Errorf("load person image: %w", err))
		return
	}
	garment, err := o.loader.Load(ctx, job.GarmentImage)
	if err != nil {
		o.fail(job, fmt.Errorf("load garment image: %w", err))
		return
	}

	// A failed pose pass is not fatal yet: the mask-assisted retry and the
	// proportional fallback both run after segmentation.
	keys, poseErr := o.pose.Detect(ctx, person, o.cfg.PoseConfidence)
	if poseErr != nil {
		o.log.Warn().Err(poseErr).Str("job_id", job.ID).Msg("initial pose pass failed")
		keys = &imaging.BodySet{}
	}

	personMask, err := o.segmenter.Segment(ctx, person)
	if err != nil {
		o.fail(job, err)
		return
	}

	if keys.Len() < 2 {
		cropped := maskedCopy(person, personMask)
		retry, err := o.pose.Detect(ctx, cropped, o.cfg.PoseConfidence)
		if err == nil && retry.Len() >= 2 {
			keys = retry
		} else {
			keys, err = vision.FallbackKeypoints(personMask)
			if err != nil {
				o.fail(job, err)
				return
			}
			o.log.Warn().Str("job_id", job.ID).Msg("using proportional fallback keypoints")
		}
	}

	regions := vision.SplitRegions(personMask, keys)

	garmentCut, garmentMask, anchorSet, err := anchors.PrepareGarment(garment)
	if err != nil {
		o.fail(job, err)
		return
	}

	t := align.ComputeTransform(anchorSet, keys)
	pb := person.Bounds()
	warped, warpedMask := align.Warp(garmentCut, garmentMask, t, pb.Dx(), pb.Dy())
	draft := align.Composite(person, warped, warpedMask, regions.Torso, regions.Arms)

	report := quality.Evaluate(anchorSet, keys, warpedMask, personMask, t, o.cfg.QualityThreshold)
	o.log.Debug().
		Str("job_id", job.ID).
		Float64("overall", report.Overall).
		Bool("passed", report.Passed).
		Msg("quality report")

	if !report.Passed && job.CanRetry() {
		if err := job.MarkRequeued(); err != nil {
			o.fail(job, domain.WrapErr(domain.KindUnknown, err, "requeue"))
			return
		}
		if err := o.store.Update(*job); err != nil {
			o.log.Error().Err(err).Str("job_id", job.ID).Msg("persist requeued state")
			return
		}
		if err := o.store.Requeue(job.ID); err != nil {
			o.log.Error().Err(err).Str("job_id", job.ID).Msg("reenqueue failed")
		}
		o.log.Info().
			Str("job_id", job.ID).
			Int("retry", job.RetryCount).
			Float64("overall", report.Overall).
			Msg("quality below threshold, retrying")
		return
	}

	result := image.Image(draft)
	if job.Mode == domain.ModeFinal {
		refined, err := o.gateway.Generate(ctx, generate.Request{
			Person:      person,
			Garment:     garmentCut,
			Draft:       draft,
			GarmentType: job.GarmentType,
			Prefs:       job.Preferences,
		})
		if err != nil {
			// The draft composite is always a valid deliverable.
			o.log.Warn().Err(err).Str("job_id", job.ID).Msg("generation gateway failed, serving draft")
		} else {
			result = refined
		}
	}

	url, err := o.files.SaveResult(ctx, job.ID, result)
	if err != nil {
		o.fail(job, err)
		return
	}

	if o.cfg.SaveDebugArtifacts {
		job.DebugArtifacts = o.files.SaveArtifacts(ctx, job.ID, storage.ArtifactBundle{
			PersonMask:     personMask,
			TorsoMask:      regions.Torso,
			GarmentMask:    warpedMask,
			DraftComposite: draft,
			Keypoints:      keys.Named(),
		})
	}

	if err := job.MarkDone(url, report.Overall); err != nil {
		o.log.Error().Err(err).Str("job_id", job.ID).Msg("mark done")
		return
	}
	if err := o.store.Update(*job); err != nil {
		o.log.Error().Err(err).Str("job_id", job.ID).Msg("persist done state")
	}
}

// fail moves the job to FAILED with the error's kind and persists it.
func (o *Orchestrator) fail(job *domain.Job, err error) {
	kind := domain.KindOf(err)
	o.log.Error().Err(err).Str("job_id", job.ID).Str("kind", string(kind)).Msg("job failed")
	if markErr := job.MarkFailed(kind, err.Error()); markErr != nil {
		o.log.Error().Err(markErr).Str("job_id", job.ID).Msg("mark failed")
		return
	}
	if updErr := o.store.Update(*job); updErr != nil && !errors.Is(updErr, domain.ErrJobNotFound) {
		o.log.Error().Err(updErr).Str("job_id", job.ID).Msg("persist failed state")
	}
}

// maskedCopy blanks everything outside the mask, giving the pose model a
// cleaner subject for its second attempt.
func maskedCopy(img *image.NRGBA, mask *imaging.Mask) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	copy(out.Pix, img.Pix)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if !mask.At(x, y) {
				i := out.PixOffset(b.Min.X+x, b.Min.Y+y)
				out.Pix[i] = 255
				out.Pix[i+1] = 255
				out.Pix[i+2] = 255
				out.Pix[i+3] = 255
			}
		}
	}
	return out
}
