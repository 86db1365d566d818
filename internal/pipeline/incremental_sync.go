// Package pipeline runs the git-driven incremental index refresh.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"jsoutline/internal/analysis"
	"jsoutline/internal/git"
	"jsoutline/internal/index"
	"jsoutline/internal/storage"
)

// ChangeSource lists the files changed in dir relative to base.
type ChangeSource func(ctx context.Context, dir, base string) ([]git.ChangedFile, error)

type IncrementalSync struct {
	ProjectRoot string
	BaseRef     string
	// Changes defaults to git.GetChangedFiles.
	Changes ChangeSource

	indexer *index.Indexer
	store   storage.OutlineStore
	logger  *slog.Logger
}

// Result reports what one sync run did.
type Result struct {
	Changes    []git.ChangedFile
	FullResync bool
	Stats      index.Stats
	Impact     *analysis.ImpactReport
}

type updatePlan struct {
	Changes    []git.ChangedFile
	FullResync bool
}

func NewIncrementalSync(root string, idx *index.Indexer, store storage.OutlineStore, logger *slog.Logger) *IncrementalSync {
	if logger == nil {
		logger = slog.Default()
	}
	return &IncrementalSync{
		ProjectRoot: root,
		BaseRef:     "HEAD",
		Changes:     git.GetChangedFiles,
		indexer:     idx,
		store:       store,
		logger:      logger,
	}
}

// Run refreshes the index from the working tree changes. With force and a
// clean tree it rebuilds the whole index instead.
func (s *IncrementalSync) Run(ctx context.Context, force bool) (*Result, error) {
	plan, err := s.detectChangesStage(ctx, force)
	if err != nil {
		return nil, err
	}
	result := &Result{Changes: plan.Changes, FullResync: plan.FullResync}
	if len(plan.Changes) == 0 && !plan.FullResync {
		s.logger.Info("no changes detected", "base", s.BaseRef)
		return result, nil
	}

	stats, err := s.indexUpdateStage(ctx, plan)
	if err != nil {
		return nil, err
	}
	result.Stats = stats

	if len(plan.Changes) > 0 {
		report, err := s.impactAnalysisStage(ctx, plan.Changes)
		if err != nil {
			return nil, err
		}
		result.Impact = report
	}
	return result, nil
}

func (s *IncrementalSync) detectChangesStage(ctx context.Context, force bool) (*updatePlan, error) {
	changes, err := s.Changes(ctx, s.ProjectRoot, s.BaseRef)
	if err != nil {
		return nil, fmt.Errorf("failed to get git changes: %w", err)
	}

	fullResync := force && len(changes) == 0
	if fullResync {
		s.logger.Info("no git changes, running full sync (--force)")
	} else if len(changes) > 0 {
		s.logger.Info("detected changed files", "count", len(changes))
	}

	return &updatePlan{
		Changes:    changes,
		FullResync: fullResync,
	}, nil
}

func (s *IncrementalSync) indexUpdateStage(ctx context.Context, plan *updatePlan) (index.Stats, error) {
	if plan.FullResync {
		stats, err := s.indexer.Build(ctx, s.ProjectRoot)
		if err != nil {
			return stats, fmt.Errorf("full sync failed: %w", err)
		}
		return stats, nil
	}
	stats, err := s.indexer.Update(ctx, s.ProjectRoot, git.Paths(plan.Changes))
	if err != nil {
		return stats, fmt.Errorf("index update failed: %w", err)
	}
	return stats, nil
}

func (s *IncrementalSync) impactAnalysisStage(ctx context.Context, changes []git.ChangedFile) (*analysis.ImpactReport, error) {
	report, err := analysis.NewAnalyzer(s.store).AnalyzeImpact(ctx, changes)
	if err != nil {
		return nil, fmt.Errorf("impact analysis failed: %w", err)
	}
	s.logger.Info("impact analyzed", "direct", len(report.DirectlyAffected), "enclosing", len(report.Enclosing))
	return report, nil
}
