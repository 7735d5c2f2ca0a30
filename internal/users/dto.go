package users

import "time"

type RegisterRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	Password      string  `json:"password" binding:"required,min=6"`
	Role          *string `json:"role,omitempty"`
	StudentID     *string `json:"studentId,omitempty"`
	Department    *string `json:"department,omitempty"`
	ContactNumber *string `json:"contactNumber,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PayFinesRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	StudentID     *string   `json:"studentId,omitempty"`
	Department    *string   `json:"department,omitempty"`
	ContactNumber *string   `json:"contactNumber,omitempty"`
	Fines         int64     `json:"fines"`
	IsActive      bool      `json:"isActive"`
	DateJoined    time.Time `json:"dateJoined"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type PayFinesResponse struct {
	Paid           int64  `json:"paid"`
	RemainingFines int64  `json:"remainingFines"`
	Message        string `json:"message"`
}

func buildUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:         u.UserID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Fines:      u.Fines,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.StudentID.Valid {
		val := u.StudentID.String
		resp.StudentID = &val
	}
	if u.Department.Valid {
		val := u.Department.String
		resp.Department = &val
	}
	if u.ContactNumber.Valid {
		val := u.ContactNumber.String
		resp.ContactNumber = &val
	}
	return resp
}
