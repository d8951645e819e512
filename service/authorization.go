package service

import (
	"context"
)

type allowListGate struct {
	allowed map[int64]struct{}
}

// NewAllowListGate permits only the given Discord IDs. An empty list denies everyone.
func NewAllowListGate(discordIDs []int64) AuthorizationGate {
	allowed := make(map[int64]struct{}, len(discordIDs))
	for _, id := range discordIDs {
		allowed[id] = struct{}{}
	}
	return &allowListGate{allowed: allowed}
}

func (g *allowListGate) CanDraw(_ context.Context, actorID int64) bool {
	_, ok := g.allowed[actorID]
	return ok
}
