package notify_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alejandrodnm/binotree/internal/adapters/notify"
	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(t *testing.T, n int, typ domain.OptionType) domain.PricingResult {
	t.Helper()
	res, err := domain.Price(domain.OptionParameters{S0: 100, K: 100, R: 0.05, T: 1, Sigma: 0.2, N: n, Type: typ})
	require.NoError(t, err)
	return res
}

func TestConsole_Notify_SmallTreeShowsEveryNode(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	require.NoError(t, n.Notify(context.Background(), price(t, 1, domain.Call)))

	out := buf.String()
	assert.Contains(t, out, "Call Option Price: $12.1623")
	assert.Contains(t, out, "Up Factor (u): 1.2214")
	assert.Contains(t, out, "Down Factor (d): 0.8187")
	assert.Contains(t, out, "Risk-Neutral Probability (p): 57.7493%")
	assert.Contains(t, out, "122.1 / 22.14")
	assert.Contains(t, out, "81.9 / 0.00")
	assert.Contains(t, out, "100.0 / 12.16")
	assert.NotContains(t, out, "WARNING")
}

func TestConsole_Notify_LargeTreeHidesLabels(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	require.NoError(t, n.Notify(context.Background(), price(t, 8, domain.Put)))

	out := buf.String()
	assert.Contains(t, out, "Put Option Price:")
	assert.Contains(t, out, "lattice: 8 steps, 45 nodes")
	assert.NotContains(t, out, "100.0 / ")
}

func TestConsole_Notify_TableForcesFullLattice(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, true)

	require.NoError(t, n.Notify(context.Background(), price(t, 8, domain.Put)))
	assert.NotContains(t, buf.String(), "labels hidden")
	assert.Contains(t, buf.String(), "cell = stock price / option value")
}

func TestConsole_Notify_ArbitrageWarning(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 0, false)

	res, err := domain.Price(domain.OptionParameters{S0: 100, K: 100, R: 0.05, T: 1, Sigma: 0.001, N: 1, Type: domain.Call})
	require.NoError(t, err)
	require.NoError(t, n.Notify(context.Background(), res))
	assert.Contains(t, buf.String(), "WARNING: p outside [0,1]")
}

func TestConsole_NotifySweep(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	points := []domain.SweepPoint{
		{Strike: 100, Call: price(t, 3, domain.Call), Put: price(t, 3, domain.Put)},
		{Strike: 110, Err: errors.New("boom")},
	}
	require.NoError(t, n.NotifySweep(context.Background(), points))

	out := buf.String()
	assert.Contains(t, out, "strike sweep: 2 strikes")
	assert.Contains(t, out, "$11.0439")
	assert.Contains(t, out, "$6.1668")
	assert.Contains(t, out, "boom")
}

func TestConsole_NotifySweep_HeaderSkipsFailedPoints(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	points := []domain.SweepPoint{
		{Strike: 90, Err: errors.New("boom")},
		{Strike: 100, Call: price(t, 3, domain.Call), Put: price(t, 3, domain.Put)},
	}
	require.NoError(t, n.NotifySweep(context.Background(), points))

	out := buf.String()
	assert.Contains(t, out, "S0=$100.00")
	assert.Contains(t, out, "N=3")
	assert.NotContains(t, out, "S0=$0.00")
}

func TestConsole_NotifySweep_AllFailed(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	points := []domain.SweepPoint{
		{Strike: 90, Err: errors.New("boom")},
		{Strike: 100, Err: errors.New("boom")},
	}
	require.NoError(t, n.NotifySweep(context.Background(), points))

	out := buf.String()
	assert.Contains(t, out, "strike sweep: 2 strikes, all failed")
	assert.NotContains(t, out, "S0=$0.00")
	assert.NotContains(t, out, "N=0")
}

func TestConsole_NotifySweep_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	require.NoError(t, n.NotifySweep(context.Background(), nil))
	assert.Contains(t, buf.String(), "empty sweep")
}

func TestConsole_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, 5, false)

	n.PrintHistory(nil)
	assert.Contains(t, buf.String(), "no stored runs")

	buf.Reset()
	n.PrintHistory([]domain.Run{{ID: "run-1", Result: price(t, 3, domain.Call)}})
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "$11.0439")
}
