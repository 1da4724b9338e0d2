package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/database/dbtest"
	releasesrepo "github.com/anoixa/comic-tracker/database/repo/releases"
)

func TestSchedule_Set(t *testing.T) {
	s := FromWeekdays(time.Monday, time.Thursday)

	assert.True(t, s.Has(time.Monday))
	assert.True(t, s.Has(time.Thursday))
	assert.False(t, s.Has(time.Sunday))
	assert.False(t, s.Empty())
	assert.Equal(t, []int{1, 4}, s.Weekdays())
	assert.Equal(t, "Mon,Thu", s.String())

	var empty Schedule
	assert.True(t, empty.Empty())
	assert.Equal(t, []int{}, empty.Weekdays())
	assert.Equal(t, "-", empty.String())
	assert.Equal(t, empty, empty.Add(time.Weekday(9)))
}

func TestSchedule_JSON(t *testing.T) {
	data, err := json.Marshal(FromWeekdays(time.Sunday, time.Saturday))
	require.NoError(t, err)
	assert.JSONEq(t, `[0,6]`, string(data))

	var s Schedule
	require.NoError(t, json.Unmarshal([]byte(`[1,3,5]`), &s))
	assert.Equal(t, FromWeekdays(time.Monday, time.Wednesday, time.Friday), s)
}

func TestFromDates(t *testing.T) {
	mondays := []time.Time{dbtest.Date(2021, 1, 4), dbtest.Date(2021, 1, 11)}
	assert.Equal(t, FromWeekdays(time.Monday), FromDates(mondays, 1))
	assert.Equal(t, FromWeekdays(time.Monday), FromDates(mondays, 2))
	assert.True(t, FromDates(mondays, 3).Empty())

	// 同一日期重复出现只计一次
	dup := []time.Time{dbtest.Date(2021, 1, 6), dbtest.Date(2021, 1, 6)}
	assert.True(t, FromDates(dup, 2).Empty())

	assert.True(t, FromDates(nil, 1).Empty())
	assert.Equal(t, FromWeekdays(time.Wednesday), FromDates(dup, 0))
}

type stubHistory struct {
	rows  []releasesrepo.ComicDate
	since time.Time
	err   error
}

func (s *stubHistory) DatesSince(_ context.Context, _ []uint, since time.Time) ([]releasesrepo.ComicDate, error) {
	s.since = since
	return s.rows, s.err
}

func TestInferencer_LookbackCoversWindow(t *testing.T) {
	h := &stubHistory{}
	inf := NewInferencer(h, Policy{LookbackDays: 10})
	asOf := time.Date(2021, 1, 12, 15, 0, 0, 0, time.UTC)

	_, err := inf.Infer(context.Background(), 1, asOf, 21)
	require.NoError(t, err)
	assert.Equal(t, dbtest.Date(2020, 12, 20), h.since, "window+2 days wins over a shorter lookback")

	_, err = inf.Infer(context.Background(), 1, asOf, 3)
	require.NoError(t, err)
	assert.Equal(t, dbtest.Date(2021, 1, 2), h.since)

	assert.Equal(t, 1, inf.Policy().MinReleases)
}

func TestInferencer_PropagatesError(t *testing.T) {
	inf := NewInferencer(&stubHistory{err: errors.New("boom")}, DefaultPolicy)
	_, err := inf.InferMany(context.Background(), []uint{1}, time.Now(), 21)
	assert.Error(t, err)
}

func TestInferencer_WithLedgerHistory(t *testing.T) {
	p := dbtest.NewProvider(t)
	x := dbtest.CreateComic(t, p, "x")
	silent := dbtest.CreateComic(t, p, "silent")
	strip := dbtest.CreateStrip(t, p, x, "aaaa")
	dbtest.CreateRelease(t, p, x, strip, dbtest.Date(2021, 1, 4))
	dbtest.CreateRelease(t, p, x, strip, dbtest.Date(2021, 1, 11))

	inf := NewInferencer(releasesrepo.NewRepository(p), DefaultPolicy)
	asOf := dbtest.Date(2021, 1, 12)

	got, err := inf.InferMany(context.Background(), []uint{x.ID, silent.ID}, asOf, 14)
	require.NoError(t, err)
	assert.Equal(t, FromWeekdays(time.Monday), got[x.ID])
	assert.True(t, got[silent.ID].Empty(), "no history means an empty schedule")

	single, err := inf.Infer(context.Background(), x.ID, asOf, 14)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, single.Weekdays())
}
