package tiles

// TapQueue is the ordered list of expected taps. Entries leave only through
// Pop, which the resolver calls on a hit at the head.
type TapQueue struct {
	pending  []ExpectedTap
	resolved int
}

// Push appends newly generated taps.
func (q *TapQueue) Push(taps ...ExpectedTap) {
	q.pending = append(q.pending, taps...)
}

// Head returns the tap waiting to be resolved.
func (q *TapQueue) Head() (ExpectedTap, bool) {
	if len(q.pending) == 0 {
		return ExpectedTap{}, false
	}
	return q.pending[0], true
}

// Pop resolves the head.
func (q *TapQueue) Pop() (ExpectedTap, bool) {
	head, ok := q.Head()
	if !ok {
		return ExpectedTap{}, false
	}
	q.pending = q.pending[1:]
	q.resolved++
	return head, true
}

// Index returns how many taps have been resolved.
func (q *TapQueue) Index() int { return q.resolved }

// Len returns the number of taps ever pushed since the last reset.
func (q *TapQueue) Len() int { return q.resolved + len(q.pending) }

// Reset empties the queue.
func (q *TapQueue) Reset() {
	q.pending = nil
	q.resolved = 0
}
