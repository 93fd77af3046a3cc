package repository

import (
	"errors"
	"time"

	"github.com/Sticlo/ProyectoCobra/pkg/metrics"
)

// observe records the latency of a store call and counts unexpected failures.
func observe(driver, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(driver, op, float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(driver, op)
	}
}
