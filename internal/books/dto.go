package books

import "time"

type CreateBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category" binding:"required"`
	ISBN        *string `json:"isbn,omitempty"`
	TotalCopies int     `json:"totalCopies"`
}

type UpdateInventoryRequest struct {
	TotalCopies *int    `json:"totalCopies" binding:"required"`
	Status      *string `json:"status,omitempty"`
}

type CopiesDTO struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

type BookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	ISBN        *string   `json:"isbn,omitempty"`
	Copies      CopiesDTO `json:"copies"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func buildBookResponse(b *Book) BookResponse {
	resp := BookResponse{
		ID:        b.BookID,
		Title:     b.Title,
		Author:    b.Author,
		Category:  string(b.Category),
		Copies:    CopiesDTO{Total: b.CopiesTotal, Available: b.CopiesAvailable},
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Description.Valid {
		val := b.Description.String
		resp.Description = &val
	}
	if b.ISBN.Valid {
		val := b.ISBN.String
		resp.ISBN = &val
	}
	return resp
}
