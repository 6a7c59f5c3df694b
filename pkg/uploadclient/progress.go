package uploadclient

import (
	"io"
	"sync"
)

// Progress is a snapshot of transfer progress. Loaded never decreases
// across updates for one transfer.
type Progress struct {
	Loaded int64
	Total  int64
}

// Percent returns the rounded completion percentage, or 0 when the total
// is unknown.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 0
	}
	return int(float64(p.Loaded)/float64(p.Total)*100 + 0.5)
}

// ProgressFunc receives progress updates during a transfer.
type ProgressFunc func(Progress)

// tracker accumulates transfer progress and guarantees the reported byte
// count is monotonically non-decreasing even when a part attempt is
// rolled back and retried.
type tracker struct {
	mu        sync.Mutex
	total     int64
	committed int64
	inflight  int64
	reported  int64
	fn        ProgressFunc
}

func newTracker(total int64, fn ProgressFunc) *tracker {
	return &tracker{total: total, fn: fn}
}

// add records n freshly transferred bytes of the current attempt.
func (t *tracker) add(n int64) {
	if t == nil || n <= 0 {
		return
	}
	t.mu.Lock()
	t.inflight += n
	t.emitLocked()
	t.mu.Unlock()
}

// commit folds a finished part into the committed byte count.
func (t *tracker) commit(n int64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.committed += n
	t.inflight = 0
	t.emitLocked()
	t.mu.Unlock()
}

// rollback discards the in-flight bytes of a failed or finished attempt.
// The high-water mark keeps the reported value from going backwards.
func (t *tracker) rollback() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.inflight = 0
	t.mu.Unlock()
}

// finish reports the transfer as fully loaded.
func (t *tracker) finish() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.committed = t.total
	t.inflight = 0
	t.emitLocked()
	t.mu.Unlock()
}

func (t *tracker) emitLocked() {
	if t.fn == nil {
		return
	}
	loaded := t.committed + t.inflight
	if loaded < t.reported {
		loaded = t.reported
	}
	if loaded > t.total && t.total > 0 {
		loaded = t.total
	}
	if loaded == t.reported && loaded != t.total {
		return
	}
	t.reported = loaded
	t.fn(Progress{Loaded: loaded, Total: t.total})
}

// reader wraps r so every read feeds the tracker.
func (t *tracker) reader(r io.Reader) io.Reader {
	if t == nil {
		return r
	}
	return &progressReader{r: r, t: t}
}

type progressReader struct {
	r io.Reader
	t *tracker
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.t.add(int64(n))
	return n, err
}
