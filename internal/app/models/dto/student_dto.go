package dto

// CreateStudentRequest is the admin payload for creating a student.
// A temporary password is generated and emailed when none is given.
type CreateStudentRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"omitempty,min=8"`
	BloodGroup string `json:"bloodGroup" binding:"required"`
	RollNo     string `json:"rollNo" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

// UpdateStudentRequest is the admin payload for updating a student
type UpdateStudentRequest struct {
	Name        string `json:"name" binding:"omitempty,min=2,max=100"`
	Email       string `json:"email" binding:"omitempty,email"`
	BloodGroup  string `json:"bloodGroup" binding:"omitempty"`
	RollNo      string `json:"rollNo" binding:"omitempty"`
	Phone       string `json:"phone" binding:"omitempty"`
	IsAvailable *bool  `json:"isAvailable" binding:"omitempty"`
}

// StudentListFilters are the optional admin list filters for students
type StudentListFilters struct {
	BloodGroup string `form:"bloodGroup"`
	Available  string `form:"available"`
	Search     string `form:"search"`
}

// UpdateAvailabilityRequest toggles a student's own availability
type UpdateAvailabilityRequest struct {
	IsAvailable bool `json:"isAvailable"`
}

// StudentUploadRowError describes a failed CSV row during bulk upload
type StudentUploadRowError struct {
	Row     int    `json:"row"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// StudentUploadResult summarizes a CSV bulk upload
type StudentUploadResult struct {
	Created int                     `json:"created"`
	Failed  int                     `json:"failed"`
	Errors  []StudentUploadRowError `json:"errors,omitempty"`
}
