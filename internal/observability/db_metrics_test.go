package observability

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDB_NoRowsIsAnOutcomeNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	err := p.ObserveDB("users.get_by_id", func() error { return pgx.ErrNoRows })
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	// latency recorded, error counter untouched
	assert.Zero(t, testutil.CollectAndCount(p.DbErrorsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(p.DbQueryDuration))

	err = p.ObserveDB("users.get_by_id", func() error { return errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get_by_id", "unknown")))
}

func TestObserveDB_NilReceiverStillRuns(t *testing.T) {
	var p *Prom

	ran := false

	err := p.ObserveDB("anything", func() error {
		ran = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, ran)
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "unique_violation", err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{name: "fk_violation", err: &pgconn.PgError{Code: "23503"}, want: "fk_violation"},
		{name: "other_pg_code", err: &pgconn.PgError{Code: "42P01"}, want: "pg_42P01"},
		{name: "deadline", err: errors.New("context deadline exceeded"), want: "timeout"},
		{name: "opaque", err: errors.New("boom"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyDBErr(tt.err))
		})
	}
}
