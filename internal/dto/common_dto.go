package dto

// PaginationMeta describes the paging envelope for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// AnganwadiLite summarizes an anganwadi in nested responses.
type AnganwadiLite struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	District string `json:"district"`
	State    string `json:"state"`
}

// TeacherLite summarizes a teacher in nested responses.
type TeacherLite struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// StudentLite summarizes a student in nested responses.
type StudentLite struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Status string `json:"status"`
}
