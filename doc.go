// Package fncache memoizes the results of expensive computations behind a
// versioned key-value cache.
//
// Components:
//   - Store[V]: where entries live. In-process TTL or LRU (store/memory), or a
//     remote byte provider such as Redis behind a Codec (store/remote).
//   - Versions: a global register and one register per subject. They are part
//     of every physical key, so bumping one invalidates a whole scope in O(1).
//   - Lock table: per-key locks that collapse concurrent misses for the same
//     key into one computation.
//
// Keys:
//
//	<prefix><key>:<hex(global)>                  global scope
//	<prefix><key>:<hex(global)>_<hex(subject)>   subject scope
//
// By default subject-scoped keys pin the global component to 0, so
// InvalidateAll leaves them alone; set Config.SubjectFollowsGlobal to make a
// global bump reach them too.
//
// The cache is best-effort. Store faults are logged and reported to Hooks and
// then degrade to a miss (Get) or false (Set, Delete); they never reach the
// caller as errors. Errors from the computation passed to GetOrCompute are
// the caller's and propagate untouched.
//
// Typical use:
//
//	m, err := fncache.New[User](fncache.Options[User]{Config: fncache.DefaultConfig()})
//	u, err := m.GetOrCompute(ctx, "user:"+id, fncache.Subject(id), 0, func(ctx context.Context) (User, error) {
//	    return db.LoadUser(ctx, id)
//	})
//	m.InvalidateUserCache(id) // after the user changes
package fncache
