package repositories

// Repositories - набор stateless репозиториев, БД передается в каждый вызов
type Repositories struct {
	Users           UserRepository
	Messages        MessageRepository
	Reactions       ReactionRepository
	PrivateMessages PrivateMessageRepository
	Subscriptions   SubscriptionRepository
	Blacklist       BlacklistRepository
	Photos          PhotoRepository
	SmsCodes        SmsCodeRepository
	Payments        PaymentRepository
	Uploads         UploadRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Users:           NewUserRepository(),
		Messages:        NewMessageRepository(),
		Reactions:       NewReactionRepository(),
		PrivateMessages: NewPrivateMessageRepository(),
		Subscriptions:   NewSubscriptionRepository(),
		Blacklist:       NewBlacklistRepository(),
		Photos:          NewPhotoRepository(),
		SmsCodes:        NewSmsCodeRepository(),
		Payments:        NewPaymentRepository(),
		Uploads:         NewUploadRepository(),
	}
}
