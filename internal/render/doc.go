// Package render provides English renderers for the speech package: field
// and format announcements, indentation, mathematics, spelling and the
// text classifier.
package render
