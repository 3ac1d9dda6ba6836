package pricing

// StoragePricePerGB is the monthly price of one GB of media storage, shared
// by every media type.
const StoragePricePerGB = 0.021

// MediaRow is one media asset type stored on behalf of every customer.
type MediaRow struct {
	ID                          string  `json:"id"`
	TypeLabel                   string  `json:"type_label"`
	MaxUnitsPerCustomerPerMonth float64 `json:"max_units_per_customer_per_month"`
	Duration                    string  `json:"duration"`
	UnitSizeGB                  float64 `json:"unit_size_gb"`
}

// MediaCost returns the monthly storage cost of row for userCount users.
// No rounding is applied.
func MediaCost(row MediaRow, userCount int) float64 {
	return row.UnitSizeGB * row.MaxUnitsPerCustomerPerMonth * float64(userCount) * StoragePricePerGB
}

// MediaTotal sums MediaCost over rows.
func MediaTotal(rows []MediaRow, userCount int) float64 {
	total := 0.0
	for _, row := range rows {
		total += MediaCost(row, userCount)
	}
	return total
}
