package employee

type CreateEmployeeRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Department   string `json:"department"`
	Role         string `json:"role" binding:"omitempty,oneof=admin employee"`
	HireDate     string `json:"hire_date" binding:"required"`
	LeaveBalance *int   `json:"leave_balance" binding:"omitempty,gte=0"`
}

// UpdateEmployeeRequest carries partial updates; nil fields are left as-is.
type UpdateEmployeeRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Department   *string `json:"department"`
	Role         *string `json:"role" binding:"omitempty,oneof=admin employee"`
	HireDate     *string `json:"hire_date"`
	LeaveBalance *int    `json:"leave_balance" binding:"omitempty,gte=0"`
}

type EmployeeResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	HireDate     string `json:"hire_date"`
	LeaveBalance int    `json:"leave_balance"`
	CreatedAt    string `json:"created_at"`
}
