package geometry

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// HittableList is an unordered aggregate of shapes that is itself a Shape.
// Intersection is linear in the number of members.
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	return &HittableList{shapes: append([]Shape(nil), shapes...)}
}

// Add appends a shape. Not safe to call while a render is reading the list.
func (l *HittableList) Add(shape Shape) {
	l.shapes = append(l.shapes, shape)
}

// Clear removes every shape
func (l *HittableList) Clear() {
	l.shapes = nil
}

// Len returns the number of shapes
func (l *HittableList) Len() int {
	return len(l.shapes)
}

// Shapes returns the members in insertion order
func (l *HittableList) Shapes() []Shape {
	return l.shapes
}

// Hit returns the closest intersection among all members.
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	hit, _, isHit := l.HitShape(ray, tMin, tMax)
	return hit, isHit
}

// HitShape is Hit that also returns the member that produced the closest intersection.
// Each member is queried with the closest hit so far as its upper bound; on an exact tie the earlier member wins.
func (l *HittableList) HitShape(ray core.Ray, tMin, tMax float64) (*material.HitRecord, Shape, bool) {
	var closestHit *material.HitRecord
	var closestShape Shape
	closestSoFar := tMax

	for _, shape := range l.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit && (closestHit == nil || hit.T < closestHit.T) {
			closestSoFar = hit.T
			closestHit = hit
			closestShape = shape
		}
	}

	return closestHit, closestShape, closestHit != nil
}
