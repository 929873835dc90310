package models

// QuotaRecord is the per-user, per-day usage counter owned by the quota store.
type QuotaRecord struct {
	UserID  string `json:"user_id" db:"user_id"`
	DateKey string `json:"date_key" db:"date_key"`
	Count   int    `json:"count" db:"count"`
}

// QuotaStatus reports today's usage for a user.
type QuotaStatus struct {
	UserID    string `json:"user_id"`
	DateKey   string `json:"date_key"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}
