// Package speech turns annotated field streams into speech sequences.
//
// A query reads the event stream under a position, compares the ancestor
// context it implies with the context cached from the previous query
// against the same document, and produces a flat Sequence of tokens.
// Announcements for structural regions entered by a query are held back
// until content is found inside the region and are spoken immediately
// before it; a region closed without content gets a single merged
// enter and exit announcement.
//
// The words for fields, formats and indentation come from the renderers
// in Collaborators. The package performs no I/O.
package speech
