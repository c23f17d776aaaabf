// Package pipeline contains rules about where training code lives.
package pipeline
