// Package analysis maps changed lines onto the outline entries they touch.
package analysis

import (
	"context"
	"fmt"

	"jsoutline/internal/extractor"
	"jsoutline/internal/git"
	"jsoutline/internal/storage"
)

// ImpactReport summarizes the outline units affected by changes.
type ImpactReport struct {
	// DirectlyAffected units span at least one changed line.
	DirectlyAffected []*extractor.OutlineUnit `json:"directly_affected"`
	// Enclosing units contain a directly affected unit without spanning a
	// changed line themselves.
	Enclosing []*extractor.OutlineUnit `json:"enclosing"`
}

// Analyzer performs impact analysis against the outline index.
type Analyzer struct {
	store storage.OutlineStore
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(store storage.OutlineStore) *Analyzer {
	return &Analyzer{store: store}
}

// AnalyzeImpact identifies which units are affected by the given changes.
// Deleted files have no units left and contribute nothing; every unit of an
// untracked file is directly affected.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, changes []git.ChangedFile) (*ImpactReport, error) {
	report := &ImpactReport{
		DirectlyAffected: []*extractor.OutlineUnit{},
		Enclosing:        []*extractor.OutlineUnit{},
	}

	for _, change := range changes {
		if change.Deleted || (len(change.ChangedLines) == 0 && !change.Untracked) {
			continue
		}
		units, err := a.store.FindByFile(ctx, change.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load units of %s: %w", change.Path, err)
		}

		byID := make(map[string]*extractor.OutlineUnit, len(units))
		for _, u := range units {
			byID[u.ID] = u
		}

		direct := make(map[string]bool)
		for _, u := range units {
			if change.Untracked || isAffected(u, change.ChangedLines) {
				direct[u.ID] = true
				report.DirectlyAffected = append(report.DirectlyAffected, u)
			}
		}

		// Walk up the nesting of each direct hit.
		enclosing := make(map[string]bool)
		for _, u := range report.DirectlyAffected {
			if u.Filepath != change.Path {
				continue
			}
			for p := byID[u.Parent]; p != nil; p = byID[p.Parent] {
				if direct[p.ID] || enclosing[p.ID] {
					break
				}
				enclosing[p.ID] = true
			}
		}
		// keep document order
		for _, u := range units {
			if enclosing[u.ID] {
				report.Enclosing = append(report.Enclosing, u)
			}
		}
	}

	return report, nil
}

func isAffected(u *extractor.OutlineUnit, lines []int) bool {
	for _, line := range lines {
		if line >= u.StartLine && line <= u.EndLine {
			return true
		}
	}
	return false
}
