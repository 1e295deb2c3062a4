// Package dicesource supplies die faces to the chain runner, either locally
// through the toolkit roller or from a remote DiceService.
package dicesource

//go:generate mockgen -destination=mock/mock_source.go -package=dicesourcemock github.com/Dizabanik/droll/internal/clients/dicesource Source

import (
	"context"
	"sort"

	"github.com/Dizabanik/droll/internal/entities/roll"
)

// Source returns a face for each request, keyed by request ID. It satisfies
// chain.Provider.
type Source interface {
	Roll(ctx context.Context, requests []roll.DieRequest) (map[string]int, error)
}

// sizeGroup is every request of a batch that shares a die size, in request order
type sizeGroup struct {
	sides    int
	requests []roll.DieRequest
}

// groupBySides buckets requests by die size, smallest size first
func groupBySides(requests []roll.DieRequest) []sizeGroup {
	index := make(map[int]int)
	var groups []sizeGroup
	for _, req := range requests {
		i, ok := index[req.Sides]
		if !ok {
			i = len(groups)
			index[req.Sides] = i
			groups = append(groups, sizeGroup{sides: req.Sides})
		}
		groups[i].requests = append(groups[i].requests, req)
	}
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].sides < groups[b].sides })
	return groups
}
