package dto

type SubscribeRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
}

type SubscriptionStatus struct {
	Subscribed bool `json:"subscribed"`
}

type BlockRequest struct {
	BlockedUserID string `json:"blocked_user_id" validate:"required,uuid"`
}

type BlockStatus struct {
	Blocked bool `json:"blocked"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
}
