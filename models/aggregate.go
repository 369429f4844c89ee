package models

// MonthlyAverage is one bucket of the monthly aggregate: a calendar month
// (1–12) and the mean Units Sold over every row falling in that month.
type MonthlyAverage struct {
	Month        int
	AvgUnitsSold float64
}
