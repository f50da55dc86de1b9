package domain

import "time"

// AnalyticsCapacity bounds the session data ring. Appends beyond the
// capacity evict the oldest entries first.
const AnalyticsCapacity = 100

// Security score bounds and adjustment steps.
const (
	ScoreMin         = 0
	ScoreMax         = 100
	ScoreThreatDelta = 5
	ScoreSecureDelta = 1
)

// DataPoint is one classified navigation (or user report) in the session log.
type DataPoint struct {
	Timestamp      time.Time   `json:"timestamp"`
	Hostname       string      `json:"hostname"`
	Secure         bool        `json:"secure"`
	ThreatDetected bool        `json:"threatDetected"`
	AdultContent   bool        `json:"adultContent"`
	Tracker        bool        `json:"tracker"`
	ThreatLevel    ThreatLevel `json:"threatLevel"`
}

// Analytics is the persisted rolling analytics singleton: a FIFO-bounded
// session log plus a derived security score in [ScoreMin, ScoreMax].
type Analytics struct {
	SessionData    []DataPoint `json:"sessionData"`
	ThreatPatterns []string    `json:"threatPatterns"`
	SecurityScore  int         `json:"securityScore"`
}

// DefaultAnalytics returns an empty log with a perfect score.
func DefaultAnalytics() Analytics {
	return Analytics{
		SessionData:    []DataPoint{},
		ThreatPatterns: []string{},
		SecurityScore:  ScoreMax,
	}
}

// Append adds p to the session log, evicts from the front down to
// AnalyticsCapacity, and applies the score adjustment rule: -5 (floored)
// on a detected threat, else +1 (capped) on a secure connection.
func (a *Analytics) Append(p DataPoint) {
	a.SessionData = append(a.SessionData, p)
	if n := len(a.SessionData); n > AnalyticsCapacity {
		a.SessionData = a.SessionData[n-AnalyticsCapacity:]
	}
	switch {
	case p.ThreatDetected:
		a.SecurityScore -= ScoreThreatDelta
		if a.SecurityScore < ScoreMin {
			a.SecurityScore = ScoreMin
		}
	case p.Secure:
		a.SecurityScore += ScoreSecureDelta
		if a.SecurityScore > ScoreMax {
			a.SecurityScore = ScoreMax
		}
	}
}
