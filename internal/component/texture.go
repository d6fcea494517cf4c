// Package component holds the scene-side data a probe reads from: models
// (shared, transform-independent triangle data) and components (placed
// instances with world transforms and texture overrides). It mirrors the
// teacher's feature-store shape (internal/analysis/db.go's
// RWMutex-guarded in-memory maps) retargeted from track metadata to
// scene geometry.
package component

import "github.com/resonantfield/auralcore/internal/material"

// Texture is a named material slot a model's faces index into.
type Texture struct {
	Name         string
	Coefficients material.Coefficients
}

// NewTexture builds a texture with the given name and per-band
// coefficients, clamped to their valid ranges.
func NewTexture(name string, c material.Coefficients) Texture {
	return Texture{Name: name, Coefficients: c.Clamp()}
}
