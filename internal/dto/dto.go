package dto

type ProductRequest struct {
	ProductID string `json:"product_id"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type MessageRequest struct {
	Content string `json:"content"`
}

type CreateSessionResponse struct {
	ID string `json:"id"`
}
