package lenders

import (
	"context"
	"slices"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
)

// Directory supplies candidate lenders and their loan products.
type Directory interface {
	ListLenders(ctx context.Context) ([]matching.Lender, error)
}

// StaticDirectory serves a fixed lender list.
type StaticDirectory struct {
	lenders []matching.Lender
}

func NewStaticDirectory(lenders []matching.Lender) *StaticDirectory {
	return &StaticDirectory{lenders: slices.Clone(lenders)}
}

func (d *StaticDirectory) ListLenders(_ context.Context) ([]matching.Lender, error) {
	return slices.Clone(d.lenders), nil
}
