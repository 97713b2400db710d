package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"paystorm/internal/core"
)

// Progress prints a live status line to stderr while the run is in
// flight. It only reads the shared counters; it never touches the
// journal.
type Progress struct {
	startTime time.Time
	counters  *core.Counters
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopped   atomic.Bool
	quiet     bool
	output    io.Writer
	mu        sync.Mutex
}

func NewProgress(counters *core.Counters, quiet bool) *Progress {
	return &Progress{
		counters: counters,
		quiet:    quiet,
		output:   os.Stderr,
	}
}

func (p *Progress) SetOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = w
}

func (p *Progress) Start() {
	if p.quiet {
		return
	}
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	p.ticker = time.NewTicker(1 * time.Second)
	go p.run()
}

func (p *Progress) run() {
	for {
		select {
		case <-p.stopCh:
			return
		case <-p.ticker.C:
			p.printProgress()
		}
	}
}

func (p *Progress) printProgress() {
	processed := p.counters.Processed.Load()
	failed := p.counters.Failed.Load()
	elapsed := time.Since(p.startTime).Round(time.Second)
	mins := int(elapsed.Minutes())
	secs := int(elapsed.Seconds()) % 60
	opsPerSec := 0.0
	if elapsed > 0 {
		opsPerSec = float64(processed) / elapsed.Seconds()
	}
	failRate := 0.0
	if processed > 0 {
		failRate = float64(failed) / float64(processed) * 100
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K[%02d:%02d] Ops: %d | Ops/s: %.1f | Failures: %d (%.1f%%)",
		mins, secs, processed, opsPerSec, failed, failRate)
	p.mu.Unlock()
}

func (p *Progress) Stop() {
	if p.quiet || p.stopped.Swap(true) {
		return
	}
	if p.ticker != nil {
		p.ticker.Stop()
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K")
	p.mu.Unlock()
}

func (p *Progress) Printf(format string, args ...interface{}) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	fmt.Fprintf(p.output, "\033[K"+format+"\n", args...)
	p.mu.Unlock()
}
