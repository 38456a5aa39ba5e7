package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many of the expected words of a run have arrived.
type ProgressBar struct {
	lock sync.Mutex

	id        string
	name      string
	startTime time.Time
	total     uint64
	finished  uint64
}

// IncrementFinished moves the bar forward. The bar never passes its total.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished += amount
	if b.finished > b.total {
		b.finished = b.total
	}
}

// Finished returns how many words have arrived.
func (b *ProgressBar) Finished() uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.finished
}

type progressRsp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
	Percent   float64   `json:"percent"`

	// ETA is the estimated number of seconds left, or -1 before the first
	// word arrived.
	ETA float64 `json:"eta"`
}

func (b *ProgressBar) snapshot(now time.Time) progressRsp {
	b.lock.Lock()
	defer b.lock.Unlock()

	rsp := progressRsp{
		ID:        b.id,
		Name:      b.name,
		StartTime: b.startTime,
		Total:     b.total,
		Finished:  b.finished,
		Percent:   100,
		ETA:       -1,
	}

	if b.total > 0 {
		rsp.Percent = 100 * float64(b.finished) / float64(b.total)
	}

	if b.finished > 0 {
		elapsed := now.Sub(b.startTime).Seconds()
		rsp.ETA = elapsed * float64(b.total-b.finished) / float64(b.finished)
	}

	return rsp
}
