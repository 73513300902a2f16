package uploader

import (
	"io"
	"sync"
)

// progressTracker holds one fraction in [0,1] per queued file and reports
// the aggregate mean. Fractions only ever move forward, so the aggregate is
// non-decreasing even when workers race.
type progressTracker struct {
	mu        sync.Mutex
	fractions []float64
	onChange  func(aggregate float64)
}

func newProgressTracker(n int, onChange func(float64)) *progressTracker {
	return &progressTracker{
		fractions: make([]float64, n),
		onChange:  onChange,
	}
}

func (t *progressTracker) set(i int, fraction float64) {
	if fraction > 1 {
		fraction = 1
	}

	t.mu.Lock()
	if fraction <= t.fractions[i] {
		t.mu.Unlock()
		return
	}
	t.fractions[i] = fraction

	var sum float64
	for _, f := range t.fractions {
		sum += f
	}
	aggregate := sum / float64(len(t.fractions))
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(aggregate)
	}
}

// progressReader reports transfer progress of a single file as its bytes
// pass through.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	index int
	track *progressTracker
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		p.track.set(p.index, float64(p.read)/float64(p.total))
	}
	return n, err
}
