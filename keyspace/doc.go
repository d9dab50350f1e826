// Package keyspace turns logical cache keys into physical store keys.
//
// A physical key embeds version registers:
//
//	<prefix><logical>:<hex(global)>                    global scope
//	<prefix><logical>:<hex(global)>_<hex(subject)>     subject scope
//
// Bumping a register changes every physical key composed from it, so entries
// written under the old value become unreachable without being touched.
// Invalidation is O(1) no matter how many keys share the scope.
package keyspace
