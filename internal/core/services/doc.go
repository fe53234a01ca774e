// Package services implements the driving port interfaces.
// Services contain the pipeline logic and orchestrate calls to driven
// ports (page readers, segmenters, embedders, corpus stores and LLMs).
//
// Services are pure Go with no CGO or external dependencies beyond
// golang.org/x/sync.
package services
