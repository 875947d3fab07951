// Package store provides the context stores a review draws playbook chunks
// from: [Flat], which hands over every chunk in order, and [Vector], which
// ranks chunks by embedding similarity to a query.
package store
