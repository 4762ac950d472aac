package upgrade

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

const day = 24 * time.Hour

// Recency holds the publication age thresholds below which a proposed
// version is flagged.
type Recency struct {
	Info    time.Duration
	Warning time.Duration
	Caution time.Duration
}

// DefaultRecency flags releases younger than three days.
var DefaultRecency = Recency{Info: 3 * day, Warning: 2 * day, Caution: day}

// RecencyLevel ranks how fresh a release is.
type RecencyLevel int

const (
	RecencyNone RecencyLevel = iota
	RecencyInfo
	RecencyWarning
	RecencyCaution
)

func (l RecencyLevel) String() string {
	switch l {
	case RecencyInfo:
		return "info"
	case RecencyWarning:
		return "warning"
	case RecencyCaution:
		return "caution"
	default:
		return "none"
	}
}

// Validate checks the threshold order.
func (r Recency) Validate() error {
	if r.Info < 0 || r.Warning < 0 || r.Caution < 0 || r.Info < r.Warning || r.Warning < r.Caution {
		return &ThresholdOrderError{Info: r.Info, Warning: r.Warning, Caution: r.Caution}
	}
	return nil
}

// OrDefault returns r when valid and logs and returns DefaultRecency
// otherwise.
func (r Recency) OrDefault() Recency {
	if err := r.Validate(); err != nil {
		log.Warn().Err(err).Msg("Invalid recency thresholds, using defaults")
		return DefaultRecency
	}
	return r
}

// Level classifies a release of the given age. The most severe matching
// threshold wins.
func (r Recency) Level(age time.Duration) RecencyLevel {
	switch {
	case age < r.Caution:
		return RecencyCaution
	case age < r.Warning:
		return RecencyWarning
	case age < r.Info:
		return RecencyInfo
	default:
		return RecencyNone
	}
}

func humanAge(age time.Duration) string {
	if age < time.Hour {
		return "less than an hour"
	}
	hours := int(math.Round(age.Hours()))
	if hours < 48 {
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d days", hours/24)
}

func (s *Session) noticeRecency(ctx context.Context, m *Module) {
	published, ok := s.Enricher.PublishedAt(ctx, m.Name, m.Latest)
	if !ok {
		return
	}
	age := s.now().Sub(published)
	level := s.Recency.Level(age)

	log.Trace().Str("module", m.Name).Str("version", m.Latest).Dur("age", age).Stringer("level", level).Msg("Checked release age")

	switch level {
	case RecencyCaution:
		s.Presenter.Printf("%s\n", s.Presenter.Attention(fmt.Sprintf(
			"Caution: %s@%s was published %s ago. Consider waiting before upgrading.", m.Name, m.Latest, humanAge(age))))
	case RecencyWarning:
		s.Presenter.Printf("%s\n", s.Presenter.Attention(fmt.Sprintf(
			"Warning: %s@%s was published %s ago.", m.Name, m.Latest, humanAge(age))))
	case RecencyInfo:
		s.Presenter.Printf("Note: %s@%s was published %s ago.\n", m.Name, m.Latest, humanAge(age))
	}
}
