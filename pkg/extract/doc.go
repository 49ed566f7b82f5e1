// Package extract pulls plain text and keyword tags out of ohou.se detail
// pages.
//
// Parsing is tolerant: any non-empty body is accepted, and a page without
// the expected regions simply yields empty text and nil keywords.
package extract
