// Package pipeline wires the five analysis stages into one batch run:
// tag-catalog ranking, reputation-tag profiling, shape classification,
// answer-feature extraction, and per-segment regression.
//
// Stages run strictly in order; each consumes the complete output of its
// predecessor. The post stream is traversed twice (once for profiling, once
// for answer extraction), each pass forward-only, so peak memory does not
// depend on dump size.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anvgorok/repshape/internal/catalog"
	"github.com/anvgorok/repshape/internal/config"
	"github.com/anvgorok/repshape/internal/dump"
	"github.com/anvgorok/repshape/internal/features"
	"github.com/anvgorok/repshape/internal/logger"
	"github.com/anvgorok/repshape/internal/models"
	"github.com/anvgorok/repshape/internal/profile"
	"github.com/anvgorok/repshape/internal/regress"
	"github.com/anvgorok/repshape/internal/shape"
)

// answerPostType is the PostTypeId discriminator for answers in the dump.
const answerPostType = 2

// Pipeline holds the wired stages and record sources for one run.
type Pipeline struct {
	cfg       *config.Config
	tags      dump.Source
	users     dump.Source
	posts     dump.Source
	extractor *features.Extractor
	engine    *regress.Engine
}

// New wires a Pipeline against the dump files named in cfg.
func New(cfg *config.Config) *Pipeline {
	return NewWithSources(cfg,
		dump.File(cfg.TagsPath()),
		dump.File(cfg.UsersPath()),
		dump.File(cfg.PostsPath()),
	)
}

// NewWithSources wires a Pipeline against explicit record sources. Tests use
// in-memory sources here.
func NewWithSources(cfg *config.Config, tags, users, posts dump.Source) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		tags:  tags,
		users: users,
		posts: posts,
		extractor: features.New(
			cfg.Analysis.MinCodeLines,
			cfg.Analysis.ShortWordThreshold,
			cfg.Analysis.LongWordThreshold,
			cfg.Dump.SiteHost,
		),
		engine: regress.NewEngine(
			regress.NewLogistic(cfg.Regression.MaxIterations, cfg.Regression.Tolerance),
			cfg.Regression.MinSegmentSize,
			cfg.Regression.Parallel,
		),
	}
}

// Run executes the full pipeline and returns the final report together with
// the extracted answer-feature table (for optional persistence).
func (p *Pipeline) Run(ctx context.Context) (*models.Report, []models.AnswerFeatures, error) {
	start := time.Now()

	// Stage 1: tag allowlist.
	topTags, err := catalog.Load(p.tags, p.cfg.Analysis.TopTags)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tag catalog: %w", err)
	}
	allowlist := catalog.NewAllowlist(topTags)
	logger.Info("Top %d tags loaded (%d tags)", p.cfg.Analysis.TopTags, allowlist.Len())

	// Stage 2: per-user tag-reputation profiles, two passes.
	index, err := profile.IndexUsers(p.users, p.cfg.Analysis.MinReputation)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index users: %w", err)
	}
	logger.Info("Indexed %d users with reputation >= %d", len(index), p.cfg.Analysis.MinReputation)

	profiles, err := profile.AccumulateGains(p.posts, index, allowlist)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build tag-reputation profiles: %w", err)
	}
	logger.Info("Built tag-reputation profiles for %d users", len(profiles))

	// Stage 3: shape classification.
	userShapes := make(map[int]models.Shape)
	shapeCounts := make(map[models.Shape]int)
	for uid, gains := range profiles {
		if s := shape.Classify(gains); s.Classified() {
			userShapes[uid] = s
			shapeCounts[s]++
		}
	}
	for _, s := range models.AllShapes {
		logger.Info("%s-shaped: %d users", s, shapeCounts[s])
	}

	// Stage 4: answer features for classified users.
	answers, err := p.extractAnswers(userShapes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract answer features: %w", err)
	}
	logger.Info("Extracted features for %d answers linked to a classified user", len(answers))

	// Stage 5: per-segment regression.
	segments, err := p.engine.FitAll(ctx, answers)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Fitted %d shape segments", len(segments))

	report := &models.Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now(),
		ShapeCounts: shapeCounts,
		Segments:    segments,
	}
	if err := report.Validate(); err != nil {
		return nil, nil, fmt.Errorf("assembled an invalid report: %w", err)
	}

	logger.Info("Pipeline completed in %v", time.Since(start))
	return report, answers, nil
}

// extractAnswers streams the post source a second time and derives features
// for every answer authored by a classified user. Posts of other types,
// ownerless posts, posts by unclassified users, and empty bodies are skipped
// before extraction.
func (p *Pipeline) extractAnswers(userShapes map[int]models.Shape) ([]models.AnswerFeatures, error) {
	var answers []models.AnswerFeatures
	err := p.posts.Walk(func(row dump.Row) error {
		if row.IntDefault("PostTypeId", 0) != answerPostType {
			return nil
		}
		owner, ok := row.Int("OwnerUserId")
		if !ok {
			return nil
		}
		ownerShape, ok := userShapes[owner]
		if !ok {
			return nil
		}
		id, ok := row.Int("Id")
		if !ok {
			return nil
		}

		body, _ := row.Str("Body")
		feats, ok := p.extractor.Extract(body)
		if !ok {
			return nil
		}

		feats.AnswerID = id
		feats.OwnerID = owner
		feats.Shape = ownerShape
		feats.Upvotes = row.IntDefault("Score", 0)
		feats.Accepted = row.IntDefault("AcceptedAnswerId", 0) == id
		answers = append(answers, feats)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answers, nil
}
