package domain

import (
	"fmt"
	"strings"
)

// ThreatLevel is the coarse condition of the running session.
// GREEN is nominal, YELLOW is degraded, RED means a confirmed threat
// was seen. RED is sticky: only a manual event clears it.
type ThreatLevel string

const (
	LevelGreen  ThreatLevel = "GREEN"
	LevelYellow ThreatLevel = "YELLOW"
	LevelRed    ThreatLevel = "RED"
)

// String returns the wire representation of the level.
func (l ThreatLevel) String() string { return string(l) }

// ParseThreatLevel converts a string into a ThreatLevel.
// Accepts "green", "yellow", "red" (case-insensitive).
func ParseThreatLevel(s string) (ThreatLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GREEN":
		return LevelGreen, nil
	case "YELLOW":
		return LevelYellow, nil
	case "RED":
		return LevelRed, nil
	default:
		return "", fmt.Errorf("unsupported ThreatLevel: %q", s)
	}
}

// Severity grades a blocked site record. MANUAL marks records created by
// an explicit user action rather than automatic classification.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
	SeverityManual Severity = "MANUAL"
)

// BlockReason records why a site entered the fortress block list.
type BlockReason string

const (
	ReasonThreatDetected      BlockReason = "THREAT_DETECTED"
	ReasonAdultContentBlocked BlockReason = "ADULT_CONTENT_BLOCKED"
	ReasonTrackerDetected     BlockReason = "TRACKER_DETECTED"
	ReasonInsecureConnection  BlockReason = "INSECURE_CONNECTION"
	ReasonUserBlocked         BlockReason = "USER_BLOCKED"
	ReasonUserActivated       BlockReason = "USER_ACTIVATED"
)

// Severity maps a block reason onto the record severity stored with it.
// Automatic detections of real threats are HIGH; user actions are MANUAL.
func (r BlockReason) Severity() Severity {
	switch r {
	case ReasonThreatDetected, ReasonAdultContentBlocked:
		return SeverityHigh
	case ReasonTrackerDetected:
		return SeverityMedium
	case ReasonInsecureConnection:
		return SeverityLow
	case ReasonUserBlocked, ReasonUserActivated:
		return SeverityManual
	default:
		return SeverityMedium
	}
}

// WarningKind classifies the transient in-page overlay shown on a warn
// outcome. GENERIC covers anything the caller cannot name precisely.
type WarningKind string

const (
	WarnTracker  WarningKind = "TRACKER_DETECTED"
	WarnInsecure WarningKind = "INSECURE_CONNECTION"
	WarnGeneric  WarningKind = "GENERIC"
)
