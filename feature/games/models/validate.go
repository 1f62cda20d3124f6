package models

import (
	"errors"
	"fmt"
)

// Validate checks the invariants of a game record.
func (g *GameRecord) Validate() error {
	var errs []error

	for k, v := range g.GuessedMapping {
		if sol, ok := g.SolutionMapping[k]; !ok || sol != v {
			errs = append(errs, fmt.Errorf("guessed mapping %q->%q not in solution", k, v))
		}
	}
	if g.HasWon && g.HasLost {
		errs = append(errs, errors.New("game cannot be both won and lost"))
	}
	if !g.IsTerminal() && g.Mistakes > g.MaxMistakes {
		errs = append(errs, fmt.Errorf("mistakes %d exceed max %d", g.Mistakes, g.MaxMistakes))
	}
	if g.IsTerminal() {
		if g.Score == nil || g.TimeTaken == nil {
			errs = append(errs, errors.New("terminal game requires score and time taken"))
		}
	} else if g.Score != nil || g.TimeTaken != nil {
		errs = append(errs, errors.New("game in progress cannot have score or time taken"))
	}
	if !g.StartTime.IsZero() && g.LastUpdateTime.Before(g.StartTime) {
		errs = append(errs, errors.New("last update precedes start"))
	}

	return errors.Join(errs...)
}
