package model

import "golang.org/x/text/cases"

// CanonicalName returns the case-insensitive identity key for a player or
// username. Casers are not safe for concurrent use, so one is built per call.
func CanonicalName(name string) string {
	return cases.Fold().String(name)
}
