package dto

// UnreadCountResponse reports the number of unread notifications
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
