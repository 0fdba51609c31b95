package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorRequests(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.Equal(t, uint64(42), snap["totalDurationMs"])
	assert.InDelta(t, 14.0, snap["avgDurationMs"], 1e-9)
}

func TestCollectorDomainCounters(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%10 == 0 {
				err = errors.New("bad input")
			}
			c.Calculation(err, i%5 == 0)
		}(i)
	}
	wg.Wait()
	c.PayslipRendered()
	c.RecordsImported(7)
	c.RecordsImported(-1)

	snap := c.Snapshot()
	assert.Equal(t, uint64(50), snap["calculationsTotal"])
	assert.Equal(t, uint64(5), snap["calculationsFailedTotal"])
	assert.Equal(t, uint64(10), snap["leaveBaseMissingTotal"])
	assert.Equal(t, uint64(1), snap["payslipsRenderedTotal"])
	assert.Equal(t, uint64(7), snap["recordsImportedTotal"])
}
