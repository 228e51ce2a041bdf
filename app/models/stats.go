package models

// DailyStats is the number of listings created on one day
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
