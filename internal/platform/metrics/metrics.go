package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	calculations       uint64
	calculationsFailed uint64
	leaveBaseMissing   uint64
	payslipsRendered   uint64
	recordsImported    uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Calculation counts one compute call. leaveBaseMissing marks paid leave that could not
// be valued for lack of a qualifying month.
func (c *Collector) Calculation(err error, leaveBaseMissing bool) {
	atomic.AddUint64(&c.calculations, 1)
	if err != nil {
		atomic.AddUint64(&c.calculationsFailed, 1)
	}
	if leaveBaseMissing {
		atomic.AddUint64(&c.leaveBaseMissing, 1)
	}
}

func (c *Collector) PayslipRendered() {
	atomic.AddUint64(&c.payslipsRendered, 1)
}

func (c *Collector) RecordsImported(n int) {
	if n > 0 {
		atomic.AddUint64(&c.recordsImported, uint64(n))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":           total,
		"errorsTotal":             atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":        atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":           avg,
		"totalDurationMs":         totalMs,
		"calculationsTotal":       atomic.LoadUint64(&c.calculations),
		"calculationsFailedTotal": atomic.LoadUint64(&c.calculationsFailed),
		"leaveBaseMissingTotal":   atomic.LoadUint64(&c.leaveBaseMissing),
		"payslipsRenderedTotal":   atomic.LoadUint64(&c.payslipsRendered),
		"recordsImportedTotal":    atomic.LoadUint64(&c.recordsImported),
	}
}
