package dto

type DaySummary struct {
	Expense float64 `json:"expense"`
	Income  float64 `json:"income"`
}

type MonthSummary struct {
	Expense   float64 `json:"expense"`
	Income    float64 `json:"income"`
	NetIncome float64 `json:"netIncome"`
}

type StatisticsSummary struct {
	Today     DaySummary   `json:"today"`
	ThisMonth MonthSummary `json:"thisMonth"`
}
