// Package status derives an asset's operational status from its telemetry
// signals. Derivation is pure: no I/O, no clock reads, no side effects.
package status

import (
	"time"

	"trackd.sh/internal/models"
)

const (
	// LowBatteryThreshold is the battery percentage at or below which an
	// asset is considered battery-critical.
	LowBatteryThreshold = 20

	// StaleAfter is how long an asset may go without a heartbeat before it
	// is considered offline.
	StaleAfter = 10 * time.Minute
)

// Derive computes the status for the given snapshot. Rules, in strict
// priority order:
//
//  1. A known battery level at or below the threshold wins over everything:
//     battery exhaustion is operationally more urgent than staleness.
//  2. A recovered battery (current status low-battery, level now above the
//     threshold) falls through to the staleness check rather than sticking.
//  3. A known lastSeen older than StaleAfter means offline.
//  4. Otherwise online.
//
// A nil battery level never forces a status change by itself (unknown, not
// critical). A nil lastSeen means "never observed" and keeps the current
// status rather than flapping a brand-new asset to offline before its first
// heartbeat; with no current status either, offline is assumed.
//
// Derive is idempotent: the same snapshot always yields the same status.
func Derive(current models.AssetStatus, batteryLevel *int, lastSeen *time.Time, now time.Time) models.AssetStatus {
	if batteryLevel != nil && *batteryLevel <= LowBatteryThreshold {
		return models.StatusLowBattery
	}
	if lastSeen != nil {
		if now.Sub(*lastSeen) > StaleAfter {
			return models.StatusOffline
		}
		return models.StatusOnline
	}
	if batteryLevel != nil {
		// A healthy battery reading with no observation history: the
		// reading itself is liveness evidence.
		return models.StatusOnline
	}
	if current == "" {
		return models.StatusOffline
	}
	return current
}
