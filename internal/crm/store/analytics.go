package store

import (
	"math"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/shopspring/decimal"
)

// Metrics recomputes the derived pipeline analytics from a full scan of
// the deal store. Money is summed with exact decimals.
func (s *Store) Metrics() models.Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		pipelineValue = decimal.Zero
		totalValue    = decimal.Zero
		closedCount   int
		wonCount      int
		velocityDays  int64
		velocityCount int
	)

	for _, deal := range s.deals {
		totalValue = totalValue.Add(deal.Value)
		if !deal.Stage.Closed() {
			pipelineValue = pipelineValue.Add(deal.Value)
			continue
		}
		closedCount++
		if deal.Stage != models.StageClosedWon {
			continue
		}
		wonCount++
		// A won deal with no recorded close date contributes nothing
		// here. Possibly an upstream oversight; preserved as observed.
		if deal.ActualCloseDate != nil {
			days := math.Ceil(deal.ActualCloseDate.Sub(deal.CreatedAt).Hours() / 24)
			velocityDays += int64(days)
			velocityCount++
		}
	}

	metrics := models.Metrics{
		PipelineValue: pipelineValue,
		AvgDealSize:   decimal.Zero,
	}
	if closedCount > 0 {
		metrics.ConversionRate = float64(wonCount) / float64(closedCount) * 100
	}
	if n := len(s.deals); n > 0 {
		metrics.AvgDealSize = totalValue.Div(decimal.NewFromInt(int64(n)))
	}
	if velocityCount > 0 {
		metrics.SalesVelocity = float64(velocityDays) / float64(velocityCount)
	}
	return metrics
}

// DealCountsByStage returns how many deals sit in each stage, for the
// scrape-time business gauges.
func (s *Store) DealCountsByStage() map[models.DealStage]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.DealStage]int, len(models.Stages))
	for _, deal := range s.deals {
		counts[deal.Stage]++
	}
	return counts
}
