package dto

type DepositIntentResponse struct {
	ClientSecret   string `json:"client_secret"`
	AmountCents    int64  `json:"amount_cents"`
	SpotsRemaining int    `json:"spots_remaining"`
}

type VipStatusResponse struct {
	IsVip          bool  `json:"is_vip"`
	SpotsRemaining int   `json:"spots_remaining"`
	TotalSpots     int   `json:"total_spots"`
	AmountCents    int64 `json:"amount_cents"`
}
