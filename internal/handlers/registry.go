package handlers

import (
	"github.com/gin-gonic/gin"

	"auxchat_backend/internal/services"
)

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler           *AuthHandler
	UserHandler           *UserHandler
	GeoHandler            *GeoHandler
	MessageHandler        *MessageHandler
	PrivateMessageHandler *PrivateMessageHandler
	SocialHandler         *SocialHandler
	PhotoHandler          *PhotoHandler
	UploadHandler         *UploadHandler
	PaymentHandler        *PaymentHandler
	AdminHandler          *AdminHandler
	HealthHandler         *HealthHandler
}

func NewAppHandlers(base *BaseHandler, svc *services.ServiceContainer, db Pinger) *AppHandlers {
	return &AppHandlers{
		AuthHandler:           NewAuthHandler(base, svc.AuthService),
		UserHandler:           NewUserHandler(base, svc.UserService, svc.PhotoService),
		GeoHandler:            NewGeoHandler(base, svc.GeoService),
		MessageHandler:        NewMessageHandler(base, svc.MessageService),
		PrivateMessageHandler: NewPrivateMessageHandler(base, svc.PrivateMessageService),
		SocialHandler:         NewSocialHandler(base, svc.SocialService),
		PhotoHandler:          NewPhotoHandler(base, svc.PhotoService),
		UploadHandler:         NewUploadHandler(base, svc.UploadService),
		PaymentHandler:        NewPaymentHandler(base, svc.PaymentService),
		AdminHandler:          NewAdminHandler(base, svc.AdminService),
		HealthHandler:         NewHealthHandler(db),
	}
}

// RegisterAPI вешает все продуктовые маршруты на группу /api/v1
func (a *AppHandlers) RegisterAPI(api *gin.RouterGroup, guards Guards) {
	a.AuthHandler.RegisterRoutes(api, guards)
	a.UserHandler.RegisterRoutes(api, guards)
	a.GeoHandler.RegisterRoutes(api, guards)
	a.MessageHandler.RegisterRoutes(api, guards)
	a.PrivateMessageHandler.RegisterRoutes(api, guards)
	a.SocialHandler.RegisterRoutes(api, guards)
	a.PhotoHandler.RegisterRoutes(api, guards)
	a.UploadHandler.RegisterRoutes(api, guards)
	a.PaymentHandler.RegisterRoutes(api, guards)
	a.AdminHandler.RegisterRoutes(api, guards)
}
