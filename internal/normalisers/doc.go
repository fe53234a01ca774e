// Package normalisers turns source documents into ordered page text.
// Each subpackage implements driven.PageReader for one document format.
//
// Readers are registered with the Registry at startup and selected by
// file extension.
package normalisers
