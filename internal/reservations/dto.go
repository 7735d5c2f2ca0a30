package reservations

import "time"

type CreateReservationRequest struct {
	BookID     string     `json:"book" binding:"required"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
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

type ReservationResponse struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user"`
	BookID           string     `json:"bookId"`
	Book             *BookDTO   `json:"book,omitempty"`
	ReservedBy       *UserDTO   `json:"reservedBy,omitempty"`
	ReservationDate  time.Time  `json:"reservationDate"`
	ExpiryDate       time.Time  `json:"expiryDate"`
	Status           string     `json:"status"`
	Expired          bool       `json:"expired"`
	NotificationSent bool       `json:"notificationSent"`
	FulfillmentDate  *time.Time `json:"fulfillmentDate,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func buildReservationResponse(v *View, now time.Time) ReservationResponse {
	resp := ReservationResponse{
		ID:               v.ReservationID,
		UserID:           v.UserID,
		BookID:           v.BookID,
		ReservationDate:  v.ReservationDate,
		ExpiryDate:       v.ExpiryDate,
		Status:           string(v.Status),
		Expired:          v.Status == StatusPending && v.IsExpired(now),
		NotificationSent: v.NotificationSent,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
	if v.FulfillmentDate.Valid {
		t := v.FulfillmentDate.Time
		resp.FulfillmentDate = &t
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
		resp.ReservedBy = &UserDTO{ID: v.User.UserID, Name: v.User.Name, Email: v.User.Email, Role: v.User.Role}
	}
	return resp
}
