// internal/workers/rate-intelligence/bid-comparison/models.go
package bidcomparison

import (
	"talent-matching-workers/internal/models"
)

type Input struct {
	Query models.MarketRateQuery `json:"query"`
	Rate  float64                `json:"rate"`
}

type Output struct {
	Rate            float64                  `json:"rate"`
	Position        models.MarketPosition    `json:"position"`
	Percentile      float64                  `json:"percentile"`
	DeltaFromMedian float64                  `json:"deltaFromMedian"`
	DeltaPct        float64                  `json:"deltaPct"`
	Recommendations []string                 `json:"recommendations"`
	Market          *models.MarketRateResult `json:"market"`
}
