// Package markdown is a document model for the speech package backed by
// goldmark. A parsed Document is a flat stream of structural fields, format
// changes and text, and serves positions for line, paragraph, word,
// character and cell units.
//
// Code spans written as `$...$` are treated as TeX mathematics. Headings
// accept a lang attribute, as in "# Titre {lang=fr}".
package markdown
