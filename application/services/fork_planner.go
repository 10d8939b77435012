package services

import (
	"math"

	"loom-backend/domain/config"
	"loom-backend/domain/core/valueobjects"
)

// ForkPlanner computes canvas positions for fork siblings and their
// assistant continuations. All methods are pure; the command handlers own
// persistence and hand-off.
type ForkPlanner struct {
	cfg *config.DomainConfig
}

// NewForkPlanner creates a fork planner with the given geometry
func NewForkPlanner(cfg *config.DomainConfig) *ForkPlanner {
	return &ForkPlanner{cfg: cfg}
}

// ForkPosition places the forkIndex-th fork of a node. Forks step right of
// the original in fixed horizontal increments; once the raw offset passes
// MaxHorizontalOffset the placement wraps onto a lower row so long fork
// fans stay on screen.
func (p *ForkPlanner) ForkPosition(original valueobjects.Position, forkIndex int) (valueobjects.Position, error) {
	raw := p.cfg.ForkHorizontalOffset * float64(forkIndex+1)
	rows := math.Floor(raw / p.cfg.MaxHorizontalOffset)
	dx := math.Mod(raw, p.cfg.MaxHorizontalOffset)

	return valueobjects.NewPosition(
		original.X()+dx,
		original.Y()+rows*p.cfg.ForkRowVerticalOffset,
	)
}

// ContinuationPosition places the assistant placeholder directly below a
// freshly created fork.
func (p *ForkPlanner) ContinuationPosition(forkPosition valueobjects.Position) (valueobjects.Position, error) {
	return valueobjects.NewPosition(
		forkPosition.X(),
		forkPosition.Y()+p.cfg.ParentChildVerticalOffset,
	)
}

// ChildPosition places an ordinary reply one level below its parent
func (p *ForkPlanner) ChildPosition(parent valueobjects.Position) (valueobjects.Position, error) {
	return valueobjects.NewPosition(
		parent.X(),
		parent.Y()+p.cfg.ParentChildVerticalOffset,
	)
}
