package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/backend"
	"sniper-dashboard/models"
)

func TestDetailsSurviveLaterScan(t *testing.T) {
	f := newFakeBackend()
	f.setScan(&backend.ScanResponse{
		Status: backend.StatusSuccess,
		Data:   []models.Decision{decision("NIFTY", models.ActionLongStock, "Trend up", "Solution: buy")},
	}, nil)
	s, store, _ := newTestScanner(f, models.ModeManual, time.Second)
	details := NewDetails(store, nil)
	require.NoError(t, s.RunScan(context.Background(), true))

	opened, err := details.OpenFor("NIFTY")
	require.NoError(t, err)
	assert.True(t, opened.Visible)

	f.setScan(&backend.ScanResponse{
		Status: backend.StatusSuccess,
		Data:   []models.Decision{decision("NIFTY", models.ActionWait, "Flat")},
	}, nil)
	require.NoError(t, s.RunScan(context.Background(), true))

	cur := details.Current()
	assert.Equal(t, opened, cur)
	assert.Equal(t, models.ActionLongStock, cur.Action)
	assert.Equal(t, []string{"Trend up", "Solution: buy"}, cur.Rational)
}

func TestDetailsOpenCopiesPayload(t *testing.T) {
	details := NewDetails(NewStore(models.ModeManual), nil)
	rational := []string{"step one"}

	details.Open("NIFTY", models.ActionWait, rational, 0.4, nil)
	rational[0] = "mutated"

	assert.Equal(t, []string{"step one"}, details.Current().Rational)
}

func TestDetailsOpenForUnknownTicker(t *testing.T) {
	details := NewDetails(NewStore(models.ModeManual), nil)

	_, err := details.OpenFor("MISSING")

	assert.ErrorIs(t, err, ErrUnknownTicker)
	assert.False(t, details.Current().Visible)
}

func TestDetailsCloseKeepsPayload(t *testing.T) {
	rec := &recorder{}
	details := NewDetails(NewStore(models.ModeManual), rec.Publish)
	details.Open("NIFTY", models.ActionIronCondor, []string{"Solution: condor"}, 0.9, nil)

	closed := details.Close()

	assert.False(t, closed.Visible)
	assert.Equal(t, "NIFTY", closed.Ticker)
	assert.Equal(t, []string{models.EventDetailsChanged, models.EventDetailsChanged}, rec.types())
}
