package memory

// undoLog holds the inverse of every write made inside one transaction.
// Rollback replays it backwards, so rows written by other units of work in
// the meantime are left alone.
type undoLog struct {
	ops []func()
}

func (l *undoLog) push(op func()) {
	if l != nil {
		l.ops = append(l.ops, op)
	}
}

// rewind runs with the store write lock held.
func (l *undoLog) rewind() {
	for i := len(l.ops) - 1; i >= 0; i-- {
		l.ops[i]()
	}
	l.ops = nil
}

// remember records how to put m[key] back to its current state. The caller
// holds the store write lock and must not mutate the stored value in place.
func remember[K comparable, V any](l *undoLog, m map[K]V, key K) {
	if l == nil {
		return
	}
	prev, existed := m[key]
	l.push(func() {
		if existed {
			m[key] = prev
		} else {
			delete(m, key)
		}
	})
}
