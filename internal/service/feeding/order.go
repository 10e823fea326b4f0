package feeding

import "sync"

// commitOrder replays post-commit work in the order commits happened.
// Tickets are drawn inside the store lock; run blocks until every earlier
// ticket has finished, so a newer snapshot is never overwritten by an older one.
type commitOrder struct {
	mu     sync.Mutex
	cond   *sync.Cond
	issued uint64
	next   uint64
}

func newCommitOrder() *commitOrder {
	o := &commitOrder{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// ticket must be taken as the last step of a successful store update.
func (o *commitOrder) ticket() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	t := o.issued
	o.issued++
	return t
}

func (o *commitOrder) run(t uint64, fn func()) {
	o.mu.Lock()
	for o.next != t {
		o.cond.Wait()
	}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.next++
		o.cond.Broadcast()
		o.mu.Unlock()
	}()
	fn()
}
