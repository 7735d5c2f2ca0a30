package borrowings

import "time"

type CreateBorrowingRequest struct {
	BookID  string     `json:"book" binding:"required"`
	DueDate *time.Time `json:"dueDate,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
}

type FineDTO struct {
	Amount   int64      `json:"amount"`
	Paid     bool       `json:"paid"`
	PaidDate *time.Time `json:"paidDate,omitempty"`
}

type BookDTO struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type BorrowingResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user"`
	BookID     string     `json:"bookId"`
	Book       *BookDTO   `json:"book,omitempty"`
	BorrowedBy *UserDTO   `json:"borrower,omitempty"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     string     `json:"status"`
	Renewals   int        `json:"renewals"`
	Fine       FineDTO    `json:"fine"`
	Notes      *string    `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func buildBorrowingResponse(v *View) BorrowingResponse {
	resp := BorrowingResponse{
		ID:         v.BorrowingID,
		UserID:     v.UserID,
		BookID:     v.BookID,
		BorrowDate: v.BorrowDate,
		DueDate:    v.DueDate,
		Status:     string(v.Status),
		Renewals:   v.Renewals,
		Fine:       FineDTO{Amount: v.FineAmount, Paid: v.FinePaid},
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	if v.ReturnDate.Valid {
		t := v.ReturnDate.Time
		resp.ReturnDate = &t
	}
	if v.FinePaidDate.Valid {
		t := v.FinePaidDate.Time
		resp.Fine.PaidDate = &t
	}
	if v.Notes.Valid {
		val := v.Notes.String
		resp.Notes = &val
	}
	if v.Book != nil {
		resp.Book = &BookDTO{
			ID:       v.Book.BookID,
			Title:    v.Book.Title,
			Author:   v.Book.Author,
			Category: v.Book.Category,
			Status:   v.Book.Status,
		}
	}
	if v.User != nil {
		resp.BorrowedBy = &UserDTO{
			ID:    v.User.UserID,
			Name:  v.User.Name,
			Email: v.User.Email,
			Role:  v.User.Role,
		}
	}
	return resp
}
