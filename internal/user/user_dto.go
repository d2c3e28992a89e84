package user

type RegisterUserRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	Email        string  `json:"email" binding:"required,email"`
	Phone        *string `json:"phone"`
	Role         string  `json:"role"`
	EmployeeCode string  `json:"employee_code"`
	Designation  *string `json:"designation"`
}

type UserResponse struct {
	ID               string  `json:"id"`
	FullName         string  `json:"full_name"`
	Email            string  `json:"email"`
	Phone            *string `json:"phone,omitempty"`
	Role             string  `json:"role"`
	EmployeeCode     string  `json:"employee_code"`
	Designation      *string `json:"designation,omitempty"`
	RegistrationDate string  `json:"registration_date,omitempty"`
	IsDeleted        bool    `json:"is_deleted"`
}
