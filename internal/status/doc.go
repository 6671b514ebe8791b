// Package status persists the point-in-time backend status snapshot to a
// text file after each health check cycle.
package status
