package models

type PaymentStatus string
type UploadKind string
type AdminAction string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusCanceled  PaymentStatus = "canceled"

	UploadKindPhoto        UploadKind = "photo"
	UploadKindVoice        UploadKind = "voice"
	UploadKindProfilePhoto UploadKind = "profile_photo"

	AdminActionAddEnergy    AdminAction = "add_energy"
	AdminActionRemoveEnergy AdminAction = "remove_energy"
	AdminActionBan          AdminAction = "ban"
	AdminActionUnban        AdminAction = "unban"
	AdminActionSetAdmin     AdminAction = "set_admin"
	AdminActionUnsetAdmin   AdminAction = "unset_admin"
	AdminActionDelete       AdminAction = "delete"
)

// AllModels - список моделей для миграции
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Message{},
		&Reaction{},
		&PrivateMessage{},
		&Subscription{},
		&Blacklist{},
		&UserPhoto{},
		&SmsCode{},
		&Payment{},
		&Upload{},
	}
}
