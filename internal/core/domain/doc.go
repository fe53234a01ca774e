// Package domain holds the value types every other layer shares: source
// Pages, segmented Passages and their EmbeddedPassage form, the Corpus built
// from one tagged style manual, ranked Matches, and Settings.
//
// It imports nothing outside the standard library.
package domain
