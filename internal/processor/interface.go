package processor

import (
	"github.com/mauv0809/rallyrank/internal/matchmaking"
	"github.com/mauv0809/rallyrank/internal/notifier"
)

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}

// Finders groups the two matching paths so tests can swap either one.
type Finders struct {
	Basic    matchmaking.MatchFinder
	Enhanced matchmaking.EnhancedMatchFinder
}
