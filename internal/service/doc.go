// Package service composes service topologies on top of the canvas graph.
//
// An Engine compiles the relations graph of a catalog once and opens
// Sessions from it. Open runs the Initializer over an instance snapshot;
// Compose starts from an empty canvas. A Session gates every operator
// gesture through the canvas validator, keeps the snapshot of the shapes
// it was opened with, and projects the composition into order items with
// the Projector. InventoryService loads sessions from, and records their
// change-sets in, an inventory store.
//
// # Event System
//
// Sessions publish every mutation on the engine's EventBus. Subscribers
// that are not ready to receive miss the event.
package service
