package common

// Stats reports pager-level bookkeeping, surfaced by the engine facade
// for the `.constants` debug command. It carries no functional behavior
// of its own.
type Stats struct {
	NumKeys    int64
	NumPages   uint32
	PageReads  int64
	PageWrites int64
	CacheHits  int64
}
