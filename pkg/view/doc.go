// Package view materializes renderables into a tree of reactive views.
//
// Each View owns one computation. When the computation reruns the view
// rebuilds its output; child views mounted under the same key are kept
// alive instead of being recreated, so a refresh of a template body does not
// tear down the regions it yields.
//
// Scopes form the component hierarchy that name lookups walk. Scopes carry
// an explicit Kind so that layout-aware behaviour (yield, contentFor) finds
// its owner by tag rather than by inspecting arbitrary properties.
package view
