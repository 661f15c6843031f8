package services

import (
	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/cache"
	"auxchat_backend/internal/config"
	"auxchat_backend/internal/geo"
	"auxchat_backend/internal/imageprocessor"
	"auxchat_backend/internal/payment"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/sms"
	"auxchat_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService           AuthService
	UserService           UserService
	GeoService            GeoService
	MessageService        MessageService
	PrivateMessageService PrivateMessageService
	SocialService         SocialService
	PhotoService          PhotoService
	UploadService         UploadService
	PaymentService        PaymentService
	AdminService          AdminService
}

// Dependencies - внешние зависимости сервисов
type Dependencies struct {
	Config    *config.Config
	Repos     *repositories.Repositories
	Tokens    *auth.TokenIssuer
	SMS       sms.Provider
	Cache     cache.Cache
	Geocoder  geo.Geocoder
	Storage   storage.Storage
	Processor *imageprocessor.Processor
	Gateway   payment.Gateway
	Notifier  Notifier
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	cfg := deps.Config
	repos := deps.Repos
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNopNotifier()
	}

	photoService := NewPhotoService(repos, cfg)

	return &ServiceContainer{
		AuthService:           NewAuthService(repos, deps.Tokens, deps.SMS, deps.Cache, cfg),
		UserService:           NewUserService(repos, deps.Geocoder, cfg),
		GeoService:            NewGeoService(deps.Geocoder),
		MessageService:        NewMessageService(repos, notifier, cfg),
		PrivateMessageService: NewPrivateMessageService(repos, notifier, cfg),
		SocialService:         NewSocialService(repos, cfg),
		PhotoService:          photoService,
		UploadService:         NewUploadService(repos, deps.Storage, deps.Processor, photoService, cfg),
		PaymentService:        NewPaymentService(repos, deps.Gateway, notifier, cfg),
		AdminService:          NewAdminService(repos, deps.Storage, notifier),
	}
}
