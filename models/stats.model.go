package models

// AdminStats is the response of GET /admin-stat
type AdminStats struct {
	TotalUsers   int64        `json:"totalUsers"`
	TotalCamps   int64        `json:"totalCamps"`
	TotalOrders  int64        `json:"totalOrders"`
	TotalRevenue float64      `json:"totalRevenue"`
	ChartData    []DailyStats `json:"chartData"`
}

// DailyStats aggregates the orders placed on one day
type DailyStats struct {
	Date     string  `bson:"date" json:"date"`
	Orders   int64   `bson:"orders" json:"orders"`
	Quantity int64   `bson:"quantity" json:"quantity"`
	Revenue  float64 `bson:"revenue" json:"revenue"`
}
