// Package cache manages the per-document speech caches. A Store hands out
// one speech.State per document, resets it when the document is reopened
// and drops caches that have not been used for a while.
package cache
