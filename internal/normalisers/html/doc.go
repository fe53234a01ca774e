// Package html reads HTML sources as plain page text.
// It strips tags, scripts and styles and decodes entities. Elements styled
// with a CSS page break start a new page, as do literal form feeds.
package html
