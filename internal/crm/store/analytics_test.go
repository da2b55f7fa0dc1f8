package store

import (
	"testing"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDeal(t *testing.T, s *Store, value string, stage models.DealStage) *models.Deal {
	t.Helper()
	return s.CreateDeal(&models.DealInput{
		Title:     "Deal",
		Value:     decimal.RequireFromString(value),
		Stage:     stage,
		CompanyID: "c1",
		ContactID: "p1",
	})
}

func TestMetricsEmptyStore(t *testing.T) {
	s := New()

	metrics := s.Metrics()

	assert.True(t, metrics.PipelineValue.IsZero())
	assert.Zero(t, metrics.ConversionRate, "no closed deals means rate 0, not NaN")
	assert.True(t, metrics.AvgDealSize.IsZero())
	assert.Zero(t, metrics.SalesVelocity)
}

func TestMetricsPipelineScenario(t *testing.T) {
	s := New()

	addDeal(t, s, "100.00", models.StageLead)
	won := addDeal(t, s, "200.00", models.StageClosedWon)
	addDeal(t, s, "50.00", models.StageClosedLost)

	closeDate := won.CreatedAt.AddDate(0, 0, 10)
	_, err := s.UpdateDeal(won.ID, &models.DealUpdate{
		ActualCloseDate: utils.Ptr(&closeDate),
	})
	require.NoError(t, err)

	metrics := s.Metrics()

	assert.True(t, metrics.PipelineValue.Equal(decimal.RequireFromString("100.00")),
		"only the open deal counts toward pipeline, got %s", metrics.PipelineValue)
	assert.InDelta(t, 50.0, metrics.ConversionRate, 1e-9, "1 of 2 closed deals won")
	expectedAvg := decimal.RequireFromString("350.00").Div(decimal.NewFromInt(3))
	assert.True(t, metrics.AvgDealSize.Equal(expectedAvg),
		"average spans open and closed deals, got %s", metrics.AvgDealSize)
	assert.InDelta(t, 10.0, metrics.SalesVelocity, 1e-9)
}

func TestMetricsVelocityIgnoresWonDealsWithoutCloseDate(t *testing.T) {
	s := New()

	dated := addDeal(t, s, "10.00", models.StageClosedWon)
	closeDate := dated.CreatedAt.AddDate(0, 0, 4)
	_, err := s.UpdateDeal(dated.ID, &models.DealUpdate{
		ActualCloseDate: utils.Ptr(&closeDate),
	})
	require.NoError(t, err)

	// Won but never given a close date. It contributes nothing to the
	// velocity mean (not a zero sample). Possibly an upstream quirk;
	// kept deliberately.
	addDeal(t, s, "20.00", models.StageClosedWon)

	metrics := s.Metrics()
	assert.InDelta(t, 4.0, metrics.SalesVelocity, 1e-9)
}

func TestMetricsVelocityZeroWhenNoDatedWins(t *testing.T) {
	s := New()
	addDeal(t, s, "20.00", models.StageClosedWon)

	assert.Zero(t, s.Metrics().SalesVelocity)
}

func TestMetricsExactDecimalSummation(t *testing.T) {
	s := New()

	// Classic float trap: 0.10 + 0.20 must be exactly 0.30.
	addDeal(t, s, "0.10", models.StageLead)
	addDeal(t, s, "0.20", models.StageQualified)

	metrics := s.Metrics()
	assert.True(t, metrics.PipelineValue.Equal(decimal.RequireFromString("0.30")),
		"got %s", metrics.PipelineValue)
}

func TestDealCountsByStage(t *testing.T) {
	s := New()
	addDeal(t, s, "1.00", models.StageLead)
	addDeal(t, s, "1.00", models.StageLead)
	addDeal(t, s, "1.00", models.StageClosedWon)

	counts := s.DealCountsByStage()
	assert.Equal(t, 2, counts[models.StageLead])
	assert.Equal(t, 1, counts[models.StageClosedWon])
	assert.Zero(t, counts[models.StageProposal])
}
