package schedule

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dlf/errs"
)

func bruteDueCount(s Schedule, t uint64) uint64 {
	var n uint64
	for tick := uint64(0); tick < t; tick++ {
		if (tick+s.Phase)%s.Interval == 0 {
			n++
		}
	}

	return n
}

func bruteNextDue(s Schedule, start uint64) uint64 {
	for tick := start; ; tick++ {
		if (tick+s.Phase)%s.Interval == 0 {
			return tick
		}
	}
}

func randomSchedule(rng *rand.Rand) Schedule {
	interval := rng.Uint64N(40) + 1
	return Schedule{Interval: interval, Phase: rng.Uint64N(interval)}
}

func TestSchedule_Validate(t *testing.T) {
	require.NoError(t, Schedule{Interval: 1}.Validate())
	require.NoError(t, Schedule{Interval: 10, Phase: 9}.Validate())
	require.ErrorIs(t, Schedule{}.Validate(), errs.ErrInvalidScheduleInterval)
	require.ErrorIs(t, Schedule{Interval: 10, Phase: 10}.Validate(), errs.ErrInvalidSchedulePhase)
	require.ErrorIs(t, Schedule{Interval: 10, Phase: 11}.Validate(), errs.ErrInvalidSchedulePhase)
}

func TestSchedule_FirstDue(t *testing.T) {
	require.Equal(t, uint64(0), Schedule{Interval: 10}.FirstDue())
	require.Equal(t, uint64(7), Schedule{Interval: 10, Phase: 3}.FirstDue())
	require.Equal(t, uint64(1), Schedule{Interval: 10, Phase: 9}.FirstDue())
	require.Equal(t, uint64(0), Schedule{Interval: 1}.FirstDue())
}

func TestSchedule_DueCount(t *testing.T) {
	s := Schedule{Interval: 10}
	require.Equal(t, uint64(0), s.DueCount(0))
	require.Equal(t, uint64(1), s.DueCount(1))
	require.Equal(t, uint64(1), s.DueCount(10))
	require.Equal(t, uint64(2), s.DueCount(11))
	require.Equal(t, uint64(2), s.DueCount(20))

	phased := Schedule{Interval: 10, Phase: 3} // due at 7, 17, 27...
	require.Equal(t, uint64(0), phased.DueCount(7))
	require.Equal(t, uint64(1), phased.DueCount(8))
	require.Equal(t, uint64(2), phased.DueCount(18))

	require.Equal(t, uint64(math.MaxUint64), Schedule{Interval: 1}.DueCount(math.MaxUint64))
}

func TestSchedule_DueCountMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		s := randomSchedule(rng)
		tick := rng.Uint64N(400)
		require.Equal(t, bruteDueCount(s, tick), s.DueCount(tick), "schedule %+v, t=%d", s, tick)
	}
}

func TestSchedule_NextDueAtOrAfter(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for range 500 {
		s := randomSchedule(rng)
		start := rng.Uint64N(400)

		next, ok := s.NextDueAtOrAfter(start)
		require.True(t, ok)
		require.Equal(t, bruteNextDue(s, start), next, "schedule %+v, start=%d", s, start)
		require.True(t, s.IsDue(next))
		require.GreaterOrEqual(t, next, start)
	}
}

func TestSchedule_NextDueAtOrAfterOverflow(t *testing.T) {
	s := Schedule{Interval: 1 << 62}

	next, ok := s.NextDueAtOrAfter(3 << 62)
	require.True(t, ok)
	require.Equal(t, uint64(3<<62), next)

	_, ok = s.NextDueAtOrAfter(3<<62 + 1)
	require.False(t, ok, "next due tick 4<<62 does not fit in uint64")

	_, ok = Schedule{Interval: 10}.NextDueAtOrAfter(math.MaxUint64)
	require.False(t, ok)
}

func TestSchedule_IsDue(t *testing.T) {
	s := Schedule{Interval: 5, Phase: 2}
	var due []uint64
	for tick := uint64(0); tick < 20; tick++ {
		if s.IsDue(tick) {
			due = append(due, tick)
		}
	}
	require.Equal(t, []uint64{3, 8, 13, 18}, due)
}

func TestSchedule_Next(t *testing.T) {
	next, ok := Schedule{Interval: 10}.Next(20)
	require.True(t, ok)
	require.Equal(t, uint64(30), next)

	_, ok = Schedule{Interval: 10}.Next(math.MaxUint64 - 5)
	require.False(t, ok)
}

func TestSchedule_ByteCount(t *testing.T) {
	n, err := Schedule{Interval: 10}.ByteCount(20, 8)
	require.NoError(t, err)
	require.Equal(t, uint64(16), n)

	_, err = Schedule{Interval: 1}.ByteCount(math.MaxUint64, 2)
	require.ErrorIs(t, err, errs.ErrOffsetOverflow)
}
