package router

import (
	"fmt"
	"strings"

	"github.com/dujiao-next/orderdesk/internal/cache"
	"github.com/dujiao-next/orderdesk/internal/config"
	adminhandlers "github.com/dujiao-next/orderdesk/internal/http/handlers/admin"
	publichandlers "github.com/dujiao-next/orderdesk/internal/http/handlers/public"
	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "od"
	}
	redisClient := cache.Client()
	orderRequestRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order_request", redisPrefix),
		WindowSeconds: cfg.Security.OrderRequestRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRequestRateLimit.MaxRequests,
		Message:       "too many order requests, retry after %d seconds",
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:staff_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		Message:       "too many login attempts, retry after %d seconds",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger.Z()))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/captcha", publicHandler.GetImageCaptcha)
			public.POST("/orders/request",
				RateLimitMiddleware(redisClient, orderRequestRule, KeyByIPAndFormField("customer_phone")),
				publicHandler.CreateOrderRequest,
			)
			public.GET("/customers/:customer_id/orders", publicHandler.GetCustomerOrders)
			public.GET("/payments/:transaction_id", publicHandler.GetPaymentByTransaction)
			public.POST("/orders/:id/payments", publicHandler.CreatePayment)
		}

		// 网关回调
		payment := apiV1.Group("/payment")
		{
			payment.POST("/success", publicHandler.PaymentSuccessCallback)
			payment.POST("/fail", publicHandler.PaymentFailCallback)
			payment.POST("/cancel", publicHandler.PaymentCancelCallback)
		}

		// 员工后台
		apiV1.POST("/admin/login",
			RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")),
			adminHandler.StaffLogin,
		)
		admin := apiV1.Group("/admin")
		admin.Use(StaffJWTAuthMiddleware(c.AuthService, c.StaffRepo))
		admin.Use(StaffRBACMiddleware(c.AuthzService))
		{
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.POST("/orders", adminHandler.AdminCreateOrder)
			admin.GET("/orders/:id", adminHandler.AdminGetOrder)
			admin.PUT("/orders/:id", adminHandler.AdminUpdateOrder)
			admin.POST("/orders/:id/payments", adminHandler.AdminCreatePayment)
			admin.PUT("/staff/presence", adminHandler.UpdatePresence)
			admin.POST("/cleanup/:action", adminHandler.RunCleanup)
			admin.GET("/authz/roles", adminHandler.ListRoles)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetRolePolicies)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "route not found")
	})

	return r
}
