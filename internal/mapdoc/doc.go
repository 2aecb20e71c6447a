// Package mapdoc defines the format-agnostic model of a map project: its
// coordinate reference system, data layers and print layouts, along with the
// Loader interface that format-specific readers implement.
//
// The Document is the single source of truth for the render package.
// Concrete loaders, such as the HCL one, live in separate packages.
package mapdoc
