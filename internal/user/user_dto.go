package user

type CreateUserRequest struct {
	FullName  string  `json:"full_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Gender    string  `json:"gender" binding:"required,oneof=MALE FEMALE"`
	HireDate  string  `json:"hire_date" binding:"required"`
	ManagerID *string `json:"manager_id"`
	Password  string  `json:"password"`
}

type UpdateUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Gender   string `json:"gender" binding:"required,oneof=MALE FEMALE"`
}

type SetManagerRequest struct {
	ManagerID *string `json:"manager_id"`
}

type UserResponse struct {
	ID             string  `json:"id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Gender         string  `json:"gender"`
	ManagerID      *string `json:"manager_id,omitempty"`
	ManagerName    string  `json:"manager_name,omitempty"`
	IsActive       bool    `json:"is_active"`
	HireDate       string  `json:"hire_date"`
}
