package loan

type BorrowReq struct {
	BookID  int64  `json:"book_id" validate:"required,gt=0"`
	DueDate string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ReturnReq struct {
	ReturnDate string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
