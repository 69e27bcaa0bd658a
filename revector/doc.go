// Package revector recomputes stored chunk vectors with the current
// vectorizer configuration.
//
// Feature vectors are derived from the configured vocabulary lists, so
// editing those lists silently invalidates every stored vector. This package
// supports batch reprocessing of the whole index with progress tracking,
// preserving chunk identity and insertion order.
package revector
