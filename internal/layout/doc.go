// Package layout positions canvas shapes so that no two bounding boxes
// overlap.
//
// Grid places top-level shapes in columns by relation depth. Embedded
// stacks embedded shapes beside their structural parent. FixCollisions
// repairs coordinates restored from persisted metadata. All passes share
// a Tracker, a reservation index of shape rectangles.
package layout
