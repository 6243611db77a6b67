package user

type UpdateUserReq struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required"`
}

type SetMaxBorrowsReq struct {
	MaxBorrows int `json:"max_borrows" validate:"required,gt=0"`
}
