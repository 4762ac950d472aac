package upgrade

import (
	"fmt"
	"time"
)

// ThresholdOrderError reports recency thresholds that are not ordered
// info >= warning >= caution.
type ThresholdOrderError struct {
	Info    time.Duration
	Warning time.Duration
	Caution time.Duration
}

func (e *ThresholdOrderError) Error() string {
	return fmt.Sprintf("recency thresholds must satisfy info >= warning >= caution, got info=%s warning=%s caution=%s",
		e.Info, e.Warning, e.Caution)
}
