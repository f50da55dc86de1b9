package engine

import (
	"sync"

	"github.com/RafalW3bCraft/cyberguard/internal/guard/domain"
)

// secureRecoveryThreshold is the number of consecutive-session secure
// connections after which a YELLOW level recovers to GREEN. The counter
// must strictly exceed it.
const secureRecoveryThreshold = 3

// threatState is the transient process-wide threat triple. It lives only
// for the lifetime of the background process and is deliberately not
// reconstructed from persisted data on restart. Only the engine mutates
// it, under its own lock.
type threatState struct {
	mu                sync.Mutex
	level             domain.ThreatLevel
	secureConnections int
	blockedThreats    int
}

func newThreatState() *threatState {
	return &threatState{level: domain.LevelGreen}
}

// recordThreat marks a confirmed threat: level goes RED and stays there
// until a manual event. Returns the new level.
func (s *threatState) recordThreat() domain.ThreatLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = domain.LevelRed
	s.blockedThreats++
	return s.level
}

// recordWarning degrades the level to YELLOW unless it is already RED
// (RED is sticky). countBlocked additionally bumps the blocked counter,
// used for tracker warnings.
func (s *threatState) recordWarning(countBlocked bool) domain.ThreatLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.level != domain.LevelRed {
		s.level = domain.LevelYellow
	}
	if countBlocked {
		s.blockedThreats++
	}
	return s.level
}

// recordSecure counts a secure connection and applies the single recovery
// path: YELLOW returns to GREEN once more than secureRecoveryThreshold
// secure connections have been seen.
func (s *threatState) recordSecure() domain.ThreatLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secureConnections++
	if s.level == domain.LevelYellow && s.secureConnections > secureRecoveryThreshold {
		s.level = domain.LevelGreen
	}
	return s.level
}

// current returns the level without mutating anything.
func (s *threatState) current() domain.ThreatLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// status snapshots the triple for the dashboard.
func (s *threatState) status() domain.ThreatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ThreatStatus{
		ThreatLevel:       s.level,
		SecureConnections: s.secureConnections,
		BlockedThreats:    s.blockedThreats,
	}
}
