package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/authz"
	"github.com/dujiao-next/orderdesk/internal/config"
	handlershared "github.com/dujiao-next/orderdesk/internal/http/handlers/shared"
	"github.com/dujiao-next/orderdesk/internal/http/response"
	"github.com/dujiao-next/orderdesk/internal/logger"
	"github.com/dujiao-next/orderdesk/internal/repository"
	"github.com/dujiao-next/orderdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Requested-With", requestIDHeader}
)

// CORSMiddleware 店铺前台与员工后台跨域访问
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", ")
	headers := strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := resolveAllowedOrigin(c.GetHeader("Origin"), origins, cfg.AllowCredentials); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		h.Set("Access-Control-Expose-Headers", requestIDHeader)
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// resolveAllowedOrigin 通配且允许凭证时回显 Origin
func resolveAllowedOrigin(origin string, allowed []string, credentials bool) string {
	for _, item := range allowed {
		switch {
		case item == "*" && credentials && origin != "":
			return origin
		case item == "*":
			return "*"
		case origin != "" && strings.EqualFold(item, origin):
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 沿用上游 X-Request-ID，缺失时生成 uuid
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// LoggerMiddleware 访问日志，5xx 记为 error
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	log := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if staffID := c.GetUint(handlershared.ContextStaffID); staffID != 0 {
			fields = append(fields, "staff_id", staffID)
		}
		switch {
		case len(c.Errors) > 0:
			log.Errorw("http_request", append(fields, "errors", c.Errors.String())...)
		case status >= http.StatusInternalServerError:
			log.Errorw("http_request", fields...)
		default:
			log.Infow("http_request", fields...)
		}
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Unauthorized(c, msg)
	c.Abort()
}

// StaffJWTAuthMiddleware 校验员工令牌，角色与启用状态以数据库为准
func StaffJWTAuthMiddleware(authService *service.AuthService, staffRepo repository.StaffRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil || staffRepo == nil {
			abortUnauthorized(c, "token invalid")
			return
		}
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "authorization header invalid")
			return
		}
		claims, err := authService.ParseJWT(strings.TrimSpace(token))
		if err != nil || claims.StaffID == 0 {
			abortUnauthorized(c, "token invalid")
			return
		}
		staff, err := staffRepo.GetByID(claims.StaffID)
		if err != nil || staff == nil {
			abortUnauthorized(c, "token invalid")
			return
		}
		if !staff.IsActive {
			abortUnauthorized(c, service.ErrStaffDisabled.Error())
			return
		}
		c.Set(handlershared.ContextStaffID, staff.ID)
		c.Set(handlershared.ContextStaffRole, staff.Role)
		c.Next()
	}
}

// StaffRBACMiddleware 以路由模板和 HTTP 方法校验员工角色
func StaffRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.TrimSpace(c.GetString(handlershared.ContextStaffRole))
		if authzService == nil || role == "" {
			if authzService == nil {
				logger.Errorw("staff_rbac_service_unavailable")
			}
			abortUnauthorized(c, "unauthorized")
			return
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		staffID := c.GetUint(handlershared.ContextStaffID)

		allowed, err := authzService.EnforceRole(role, route, c.Request.Method)
		if err != nil {
			logger.Errorw("staff_rbac_enforce_failed", "staff_id", staffID, "role", role, "route", route, "error", err)
			abortUnauthorized(c, "unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("staff_rbac_permission_denied",
				"staff_id", staffID,
				"role", role,
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(route),
			)
			response.Forbidden(c, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}
