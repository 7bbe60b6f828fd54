package tree

import "errors"

// ErrTreeContractViolation is returned when a mutation names a parent
// directory that isn't in the index, for example an ADDED event for a
// child whose parent was never built. It is an invariant violation rather
// than an ordinary runtime error: it means an earlier event was lost, and
// the caller driving the tree should rebuild it from disk rather than try
// to patch it in place.
var ErrTreeContractViolation = errors.New("tree: contract violation")
