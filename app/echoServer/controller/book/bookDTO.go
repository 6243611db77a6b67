package book

type CreateBookReq struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gte=0"`
}

type UpdateBookReq struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
}

type AddStockReq struct {
	Count int64 `json:"count" validate:"required,gt=0"`
}

type SetAvailabilityReq struct {
	Available *bool `json:"available" validate:"required"`
}
