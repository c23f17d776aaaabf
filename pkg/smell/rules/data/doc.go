// Package data contains rules about silent data loss in preprocessing code.
package data
