// Package geometry turns a drawing's hierarchical block structure into flat
// world-space primitives.
//
// # Entities
//
// Drawing records arrive as a closed set of Entity types (Line, Polyline,
// Arc, Circle, Ellipse, Hatch, Text, Insert, Annotation and Unsupported).
// The resolver handles each of them explicitly; an Unsupported record yields a
// warning, never a silent no-op.
//
// # Resolution
//
// A Resolver walks the root entity list with an identity Transform. Every
// Insert composes its local placement with the parent transform, emits an
// Instance primitive at the projected insertion point and descends into the
// referenced BlockDefinition:
//
//	r := geometry.NewResolver(blocks, geometry.WithMaxDepth(10),
//		geometry.WithUnitScale(geometry.UnitScale{Length: 0.001, Area: 1e-6}))
//	res := r.Resolve(drawing.Entities)
//
// Entities on layer "0" (or with no layer) inherit the owning insert's layer.
// The first insert of a nesting chain fixes the primitive's RootLayer, which
// deeper inserts never overwrite.
//
// Structural defects (undefined blocks, cycles, over-depth recursion, missing
// coordinates) are recovered locally and reported in Result.Warnings.
package geometry
