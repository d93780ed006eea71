package report

import (
	"fmt"
	"time"
)

// TimeBudgetError aborts the run when the wall-clock budget is exhausted
// before an expensive stage starts. The run fails loudly instead of
// silently truncating the document.
type TimeBudgetError struct {
	Elapsed time.Duration
	Budget  time.Duration
}

func (e *TimeBudgetError) Error() string {
	return fmt.Sprintf("report: wall-clock budget exceeded: %s elapsed of %s allowed", e.Elapsed.Round(time.Second), e.Budget)
}
