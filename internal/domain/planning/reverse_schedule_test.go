package planning_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/domain"
	"github.com/jhoicas/scm-api/internal/domain/planning"
)

var standardLeadTimes = planning.LeadTimes{
	ProductionWeeks:    6,
	LoadingBufferWeeks: 1,
	TransitWeeks:       5,
	InboundBufferWeeks: 2,
}

func TestReverseSchedule_Cadena(t *testing.T) {
	s, err := planning.ReverseSchedule(wk(2026, 20), standardLeadTimes, wk(2026, 1))
	require.NoError(t, err)

	assert.Equal(t, wk(2026, 18), s.ArrivalWeek)
	assert.Equal(t, wk(2026, 13), s.ShipWeek)
	assert.Equal(t, wk(2026, 12), s.ReadyWeek)
	assert.Equal(t, wk(2026, 6), s.OrderWeek)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), s.OrderDate)
	assert.Equal(t, time.Monday, s.ShipDate.Weekday())
	assert.Equal(t, planning.UrgencyOnTrack, s.Urgency)
	assert.Zero(t, s.OverdueWeeks)
	assert.Nil(t, s.EarliestTarget)
}

func TestReverseSchedule_CruzaAnioDe53Semanas(t *testing.T) {
	lt := planning.LeadTimes{ProductionWeeks: 4, LoadingBufferWeeks: 1, TransitWeeks: 3, InboundBufferWeeks: 2}
	s, err := planning.ReverseSchedule(wk(2027, 3), lt, wk(2026, 40))
	require.NoError(t, err)

	assert.Equal(t, wk(2027, 1), s.ArrivalWeek)
	assert.Equal(t, wk(2026, 51), s.ShipWeek, "2027-W01 − 3 pasa por 2026-W53")
	assert.Equal(t, wk(2026, 50), s.ReadyWeek)
	assert.Equal(t, wk(2026, 46), s.OrderWeek)
}

func TestReverseSchedule_IdaYVuelta(t *testing.T) {
	current := wk(2020, 1)
	for year := 2020; year <= 2027; year++ {
		for week := 1; week <= planning.WeeksInYear(year); week++ {
			target := wk(year, week)
			s, err := planning.ReverseSchedule(target, standardLeadTimes, current)
			require.NoError(t, err)
			require.Equal(t, target, s.OrderWeek.AddWeeks(standardLeadTimes.Total()), "objetivo %s", target)
			require.Equal(t, target, planning.ForwardSchedule(s.OrderWeek, standardLeadTimes))
		}
	}
}

func TestReverseSchedule_VencidaNoSeRecorta(t *testing.T) {
	s, err := planning.ReverseSchedule(wk(2026, 45), standardLeadTimes, wk(2026, 43))
	require.NoError(t, err)

	assert.Equal(t, wk(2026, 31), s.OrderWeek, "la semana de pedido queda en el pasado")
	assert.Equal(t, planning.UrgencyOverdue, s.Urgency)
	assert.Equal(t, 12, s.OverdueWeeks)
	require.NotNil(t, s.EarliestTarget)
	assert.Equal(t, wk(2027, 4), *s.EarliestTarget)
}

func TestReverseSchedule_PedirEstaSemana(t *testing.T) {
	s, err := planning.ReverseSchedule(wk(2026, 20), standardLeadTimes, wk(2026, 6))
	require.NoError(t, err)
	assert.Equal(t, planning.UrgencyOrderNow, s.Urgency)
}

func TestReverseSchedule_Validaciones(t *testing.T) {
	_, err := planning.ReverseSchedule(wk(2026, 20), planning.LeadTimes{TransitWeeks: -1}, wk(2026, 1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = planning.ReverseSchedule(wk(2026, 54), standardLeadTimes, wk(2026, 1))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	assert.Equal(t, 14, standardLeadTimes.Total())
}
