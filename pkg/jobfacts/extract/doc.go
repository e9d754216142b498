// Package extract holds the entity extractors. Each extractor is a pure
// function over a normalized token sequence and returns a freshly built,
// deduplicated and sorted slice; no match yields an empty, non-nil slice.
package extract
