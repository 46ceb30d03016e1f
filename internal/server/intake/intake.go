// Package intake runs one submission through the moderation pipeline:
//
//	received -> identity resolved -> suspension checked -> duplicate checked
//	  -> persisted + classified -> stats refreshed -> policy evaluated -> done
//
// The database's unique digest constraint is the only correctness mechanism
// for deduplication. The existence probe before the write is an
// optimisation; a submission that loses a race on insert is reported as a
// duplicate and leaves nothing behind.
package intake

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/dmitrijs2005/dogspotter/internal/digest"
	"github.com/dmitrijs2005/dogspotter/internal/logging"
	"github.com/dmitrijs2005/dogspotter/internal/server/blobstore"
	"github.com/dmitrijs2005/dogspotter/internal/server/models"
	"github.com/dmitrijs2005/dogspotter/internal/server/policy"
)

// SubmissionStore is the persistence the pipeline needs. *store.Store
// implements it.
type SubmissionStore interface {
	ResolveOrCreateUser(ctx context.Context, identity int64) (*models.User, error)
	LookupUser(ctx context.Context, identity int64) (*models.User, error)
	IsSuspended(ctx context.Context, ownerID int64) (bool, error)
	ExistsByDigest(ctx context.Context, digest string) (bool, error)
	InsertSubmission(ctx context.Context, name string, ownerID int64, classified bool, digest string) (int64, error)
	StatsForUser(ctx context.Context, ownerID int64) (models.Stats, error)
	SetSuspended(ctx context.Context, ownerID int64) error
}

// Classifier never fails; an unusable detector answers false.
type Classifier interface {
	Classify(ctx context.Context, image []byte) bool
}

// Submission is one incoming photo.
type Submission struct {
	Identity int64
	Content  []byte
	// Name is the derived file name used by the blob store.
	Name string
}

type Pipeline struct {
	store      SubmissionStore
	blobs      blobstore.Store
	classifier Classifier
	policy     policy.Engine
	logger     logging.Logger
}

func New(s SubmissionStore, blobs blobstore.Store, c Classifier, p policy.Engine, logger logging.Logger) *Pipeline {
	return &Pipeline{
		store:      s,
		blobs:      blobs,
		classifier: c,
		policy:     p,
		logger:     logger.With("module", "intake"),
	}
}

// Admit is the pre-check run before the content is fetched. A known
// suspended identity gets its final RejectedSuspended outcome; everything
// else, store errors included, is admitted and HandleSubmission decides.
func (p *Pipeline) Admit(ctx context.Context, identity int64) (Outcome, bool) {
	user, err := p.store.LookupUser(ctx, identity)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			p.logger.Warn(ctx, "admission check failed", "identity", identity, "error", err)
		}
		return Outcome{}, true
	}
	if !user.Suspended {
		return Outcome{}, true
	}

	p.logger.Warn(ctx, "submission from suspended user", "identity", identity, "user_id", user.ID)
	out := Outcome{Kind: RejectedSuspended}
	outcomesTotal.WithLabelValues(out.Kind.String()).Inc()
	return out, false
}

// HandleSubmission processes sub and returns exactly one outcome.
func (p *Pipeline) HandleSubmission(ctx context.Context, sub Submission) Outcome {
	out := p.handle(ctx, sub)
	outcomesTotal.WithLabelValues(out.Kind.String()).Inc()
	return out
}

func (p *Pipeline) handle(ctx context.Context, sub Submission) Outcome {
	log := p.logger.With("identity", sub.Identity)

	user, err := p.store.ResolveOrCreateUser(ctx, sub.Identity)
	if err != nil {
		log.Error(ctx, "failed to resolve user", "error", err)
		return Outcome{Kind: RejectedError}
	}
	log = log.With("user_id", user.ID)

	// The flag on the resolved row may be stale by the time we get here;
	// ask again.
	suspended, err := p.store.IsSuspended(ctx, user.ID)
	if err != nil {
		log.Error(ctx, "failed to check suspension", "error", err)
		return Outcome{Kind: RejectedError}
	}
	if suspended {
		log.Warn(ctx, "submission from suspended user")
		return Outcome{Kind: RejectedSuspended}
	}

	d := digest.Sum(sub.Content)
	log = log.With("digest", d)

	exists, err := p.store.ExistsByDigest(ctx, d)
	if err != nil {
		log.Error(ctx, "failed to probe digest", "error", err)
		return Outcome{Kind: RejectedError}
	}
	if exists {
		log.Info(ctx, "duplicate submission")
		return Outcome{Kind: RejectedDuplicate}
	}

	location, err := p.blobs.Put(ctx, sub.Name, sub.Content)
	if err != nil {
		log.Error(ctx, "failed to store image", "name", sub.Name, "error", err)
		return Outcome{Kind: RejectedError}
	}

	classified := p.classifier.Classify(ctx, sub.Content)

	id, err := p.store.InsertSubmission(ctx, sub.Name, user.ID, classified, d)
	if err != nil {
		p.discard(ctx, log, location)
		if errors.Is(err, common.ErrConstraintViolation) {
			log.Info(ctx, "duplicate submission lost insert race")
			return Outcome{Kind: RejectedDuplicate}
		}
		log.Error(ctx, "failed to insert submission", "error", err)
		return Outcome{Kind: RejectedError}
	}

	kind := AcceptedWithoutDetection
	if classified {
		kind = AcceptedWithDetection
	}
	out := Outcome{Kind: kind, SubmissionID: id}

	// The row is committed from here on. Failures below are logged but the
	// submission stays accepted.
	stats, err := p.store.StatsForUser(ctx, user.ID)
	if err != nil {
		log.Error(ctx, "failed to refresh stats after insert", "submission_id", id, "error", err)
		return out
	}
	out.Stats = stats

	if p.policy.Evaluate(stats) {
		if err := p.store.SetSuspended(ctx, user.ID); err != nil {
			log.Error(ctx, "failed to suspend user", "total", stats.Total, "positive", stats.Positive, "error", err)
			return out
		}
		usersSuspended.Inc()
		out.Suspended = true
		log.Warn(ctx, "user suspended by policy", "total", stats.Total, "positive", stats.Positive)
	}

	return out
}

func (p *Pipeline) discard(ctx context.Context, log logging.Logger, location string) {
	// The request context may already be done; cleanup still has to run.
	if err := p.blobs.Delete(context.WithoutCancel(ctx), location); err != nil {
		log.Error(ctx, "failed to remove orphaned image", "location", location, "error", err)
	}
}

// Stats returns the aggregate for identity, creating the user on first sight.
func (p *Pipeline) Stats(ctx context.Context, identity int64) (models.Stats, error) {
	user, err := p.store.ResolveOrCreateUser(ctx, identity)
	if err != nil {
		return models.Stats{}, err
	}
	return p.store.StatsForUser(ctx, user.ID)
}

// LookupStats returns the aggregate for a known identity and
// common.ErrorNotFound otherwise. It never writes.
func (p *Pipeline) LookupStats(ctx context.Context, identity int64) (models.Stats, error) {
	user, err := p.store.LookupUser(ctx, identity)
	if err != nil {
		return models.Stats{}, err
	}
	return p.store.StatsForUser(ctx, user.ID)
}
