// Package activation implements the mission activation daemon, which unlocks
// dependency-gated missions as the answer store changes.
package activation
