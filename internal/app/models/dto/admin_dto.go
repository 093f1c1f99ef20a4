package dto

// CreateAdminRequest is the payload for creating another admin account
type CreateAdminRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone" binding:"omitempty"`
}

// UpdateAdminRequest is the payload for updating an admin account
type UpdateAdminRequest struct {
	Name  string `json:"name" binding:"omitempty,min=2,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty"`
}

// DashboardStats is the admin dashboard summary
type DashboardStats struct {
	TotalRequests     int64 `json:"totalRequests"`
	PendingRequests   int64 `json:"pendingRequests"`
	ApprovedRequests  int64 `json:"approvedRequests"`
	FulfilledRequests int64 `json:"fulfilledRequests"`
	TotalStudents     int64 `json:"totalStudents"`
	AvailableStudents int64 `json:"availableStudents"`
	RecentOptIns      int64 `json:"recentOptIns"` // opt-ins in the last 24 hours
}

// BloodGroupStats is the per-group request/donor breakdown
type BloodGroupStats struct {
	BloodGroup        string `json:"bloodGroup"`
	TotalRequests     int64  `json:"totalRequests"`
	FulfilledRequests int64  `json:"fulfilledRequests"`
	AvailableDonors   int64  `json:"availableDonors"`
}
