package sched

// queue is a doubly-linked circular list of PCBs with a single head
// pointer; it is empty iff head is nil. A PCB is a member of at most one
// queue at a time (its next/prev fields belong to whichever queue last
// inserted it), matching the invariant that the running process is never
// present in any queue.
type queue struct {
	head *PCB
}

func (q *queue) empty() bool {
	return q.head == nil
}

// insertSingle makes p a one-element circular list and installs it as head.
func (q *queue) insertSingle(p *PCB) {
	p.next, p.prev = p, p
	q.head = p
}

// appendFIFO adds p at the tail (just before head), used by the blocked
// and sleeping queues, which have no ordering beyond arrival.
func (q *queue) appendFIFO(p *PCB) {
	if q.empty() {
		q.insertSingle(p)
		return
	}
	tail := q.head.prev
	p.next = q.head
	p.prev = tail
	tail.next = p
	q.head.prev = p
}

// insertByPriority inserts p scanning from head, before the first existing
// process of strictly lower priority; it appends at the tail if no such
// process exists. If the new process outranks the current head, it
// becomes the new head. This is the ready queue's only insertion path.
func (q *queue) insertByPriority(p *PCB) {
	if q.empty() {
		q.insertSingle(p)
		return
	}

	cur := q.head
	for i := 0; i < q.len(); i++ {
		if cur.Priority < p.Priority {
			q.insertBefore(cur, p)
			if cur == q.head {
				q.head = p
			}
			return
		}
		cur = cur.next
	}

	q.appendFIFO(p)
}

// insertBefore splices p into the list immediately before mark. Both must
// already be well-formed circular-list members (mark via the existing
// list, p detached).
func (q *queue) insertBefore(mark, p *PCB) {
	prev := mark.prev
	p.next = mark
	p.prev = prev
	prev.next = p
	mark.prev = p
}

// remove detaches p from whichever queue it is currently linked into,
// updating head if necessary. It is safe to call on the sole remaining
// element.
func (q *queue) remove(p *PCB) {
	if p.next == p {
		q.head = nil
		p.next, p.prev = nil, nil
		return
	}

	p.prev.next = p.next
	p.next.prev = p.prev
	if q.head == p {
		q.head = p.next
	}
	p.next, p.prev = nil, nil
}

// rotate advances head to its successor, used by the round-robin step of
// the MLFQ policy. It is a no-op on an empty or single-element queue.
func (q *queue) rotate() {
	if q.empty() || q.head.next == q.head {
		return
	}
	q.head = q.head.next
}

func (q *queue) len() int {
	if q.empty() {
		return 0
	}
	n := 1
	for cur := q.head.next; cur != q.head; cur = cur.next {
		n++
	}
	return n
}

// maxSnapshot bounds forEach's on-stack snapshot. There is no heap
// allocator backing slice growth in this kernel once past the bootstrap
// region budget, so the snapshot is a fixed-size stack array rather than
// an append-grown slice; maxSnapshot comfortably exceeds any process count
// this educational scheduler is expected to carry.
const maxSnapshot = 256

// forEach calls fn once per element, in head-to-tail order, against a
// pre-collected snapshot of the list. Walking a snapshot instead of the
// live links lets fn remove the element it was just given (reparenting it
// into another queue) without disturbing the rest of the walk.
func (q *queue) forEach(fn func(*PCB)) {
	if q.empty() {
		return
	}

	var snapshot [maxSnapshot]*PCB
	n := q.len()
	if n > maxSnapshot {
		n = maxSnapshot
	}

	cur := q.head
	for i := 0; i < n; i++ {
		snapshot[i] = cur
		cur = cur.next
	}

	for i := 0; i < n; i++ {
		fn(snapshot[i])
	}
}
