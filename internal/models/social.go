package models

// Subscription - направленная подписка subscriber -> subscribed_to
type Subscription struct {
	CreatedOnly
	SubscriberID   string `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair,priority:1;check:chk_subscription_not_self,subscriber_id <> subscribed_to_id" json:"subscriber_id"`
	SubscribedToID string `gorm:"type:uuid;not null;uniqueIndex:idx_subscription_pair,priority:2;index" json:"subscribed_to_id"`
}

// Blacklist - пользователь скрывает сообщения blocked_user
type Blacklist struct {
	CreatedOnly
	UserID        string `gorm:"type:uuid;not null;uniqueIndex:idx_blacklist_pair,priority:1;check:chk_blacklist_not_self,user_id <> blocked_user_id" json:"user_id"`
	BlockedUserID string `gorm:"type:uuid;not null;uniqueIndex:idx_blacklist_pair,priority:2;index" json:"blocked_user_id"`
}

func (Blacklist) TableName() string {
	return "blacklist"
}
