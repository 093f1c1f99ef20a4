package dto

// SystemLogFilters are the optional filters for listing system logs
type SystemLogFilters struct {
	Level  string `form:"level"`
	User   string `form:"user"`
	From   string `form:"from"` // RFC3339 or YYYY-MM-DD
	To     string `form:"to"`
	Search string `form:"search"`
}

// SystemLogStats aggregates log counts per level
type SystemLogStats struct {
	Total int64            `json:"total"`
	Level map[string]int64 `json:"byLevel"`
}
