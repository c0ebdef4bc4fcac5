// Package domain holds the core review entities: cards and their two
// review facets, per-user scheduler configuration, grades, item states,
// and the append-only review log. It has no knowledge of storage or
// transport; the srs subpackage operates purely on these types.
package domain
