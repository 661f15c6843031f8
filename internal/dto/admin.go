package dto

import "time"

type AdminActionRequest struct {
	AdminSecret  string `json:"admin_secret"`
	Action       string `json:"action" validate:"required,admin_action"`
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
	Amount       int    `json:"amount" validate:"gte=0"`
}

type AdminActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Energy  *int   `json:"energy,omitempty"`
}

type AdminUserResponse struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar"`
	Energy    int       `json:"energy"`
	IsAdmin   bool      `json:"is_admin"`
	IsBanned  bool      `json:"is_banned"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminUserListResponse struct {
	Users []AdminUserResponse `json:"users"`
}
