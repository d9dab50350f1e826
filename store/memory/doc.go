// Package memory implements the in-process eviction stores.
//
// TTL expires entries lazily on read (and optionally on a periodic sweep);
// LRU bounds the number of entries and evicts the least recently touched one.
// Both keep values as-is (no encoding) behind a single mutex and never
// suspend, so their blocking-path methods are always supported.
package memory
