// Package httpapi exposes adventure commands as a JSON API for clients that
// start adventures outside the WebSocket.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Womp-Womp/AdventureBot/internal/platform/errors"
	"github.com/Womp-Womp/AdventureBot/internal/platform/errors/i18n"
	"github.com/Womp-Womp/AdventureBot/internal/platform/requestctx"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/auth"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/controller"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/domain/character"
)

// Service is the controller surface the API drives.
type Service interface {
	Handle(ctx context.Context, ev controller.Event) (controller.Outcome, error)
	Balance(ctx context.Context, userID string) (float64, error)
	GrantCredits(ctx context.Context, actorID, targetID string, amount float64) (float64, error)
}

// Authenticator resolves a bearer token to a user ID.
type Authenticator func(token string) (string, error)

type startRequest struct {
	Character *character.Draft `json:"character"`
}

type grantRequest struct {
	UserID string  `json:"user_id"`
	Amount float64 `json:"amount"`
}

type outcomeResponse struct {
	Status    string  `json:"status"`
	MessageID string  `json:"message_id,omitempty"`
	Balance   float64 `json:"balance"`
	Granted   bool    `json:"granted,omitempty"`
	Text      string  `json:"text,omitempty"`
}

type balanceResponse struct {
	UserID  string  `json:"user_id"`
	Balance float64 `json:"balance"`
	Text    string  `json:"text"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter builds the API routes. Every /v1 route requires a bearer token.
func NewRouter(svc Service, authenticate Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/up", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	v1 := router.Group("/v1", authMiddleware(authenticate))
	v1.POST("/adventures", startHandler(svc))
	v1.POST("/character/reset", resetHandler(svc))
	v1.GET("/balance", balanceHandler(svc))
	v1.POST("/admin/credits", grantHandler(svc))
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Printf("http: %s %s status=%d user=%q duration=%s",
			c.Request.Method, c.FullPath(), c.Writer.Status(),
			requestctx.UserIDFromContext(c.Request.Context()), time.Since(started).Round(time.Millisecond))
	}
}

func authMiddleware(authenticate Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := i18n.FromAcceptLanguage(c.GetHeader("Accept-Language"))
		ctx := requestctx.WithLocale(c.Request.Context(), locale)
		c.Request = c.Request.WithContext(ctx)

		if authenticate == nil {
			abortWithError(c, apperrors.New(apperrors.CodeUnauthenticated, "authentication is not configured"))
			return
		}
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, apperrors.New(apperrors.CodeUnauthenticated, "bearer token is required"))
			return
		}
		userID, err := authenticate(token)
		if err != nil || strings.TrimSpace(userID) == "" {
			if _, ok := apperrors.As(err); !ok {
				err = apperrors.Wrap(apperrors.CodeUnauthenticated, "token rejected", err)
			}
			abortWithError(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestctx.WithUserID(ctx, strings.TrimSpace(userID)))
		c.Next()
	}
}

func startHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				abortWithError(c, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid start body", err))
				return
			}
		}
		ctx := c.Request.Context()
		out, err := svc.Handle(ctx, controller.Event{
			Kind:   controller.KindStart,
			UserID: requestctx.UserIDFromContext(ctx),
			Draft:  req.Character,
			Locale: requestctx.LocaleFromContext(ctx),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		resp := outcomeResponse{
			Status:    string(out.Status),
			MessageID: out.MessageID,
			Balance:   out.Balance,
			Granted:   out.Granted,
		}
		if out.Status == controller.StatusCharacterRequired {
			resp.Text = i18n.GetCatalog(requestctx.LocaleFromContext(ctx)).Format(i18n.CodeCharacterRequired, nil)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func resetHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		out, err := svc.Handle(ctx, controller.Event{
			Kind:   controller.KindReset,
			UserID: requestctx.UserIDFromContext(ctx),
			Locale: requestctx.LocaleFromContext(ctx),
		})
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, outcomeResponse{Status: string(out.Status), MessageID: out.MessageID})
	}
}

func balanceHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := requestctx.UserIDFromContext(ctx)
		balance, err := svc.Balance(ctx, userID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		cat := i18n.GetCatalog(requestctx.LocaleFromContext(ctx))
		c.JSON(http.StatusOK, balanceResponse{
			UserID:  userID,
			Balance: balance,
			Text:    cat.Format(i18n.NoticeBalance, map[string]string{"Balance": formatFloat(balance)}),
		})
	}
}

func grantHandler(svc Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req grantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid credit body", err))
			return
		}
		ctx := c.Request.Context()
		balance, err := svc.GrantCredits(ctx, requestctx.UserIDFromContext(ctx), req.UserID, req.Amount)
		if err != nil {
			abortWithError(c, err)
			return
		}
		cat := i18n.GetCatalog(requestctx.LocaleFromContext(ctx))
		c.JSON(http.StatusOK, balanceResponse{
			UserID:  strings.TrimSpace(req.UserID),
			Balance: balance,
			Text: cat.Format(i18n.NoticeCreditsGranted, map[string]string{
				"Amount":  formatFloat(req.Amount),
				"User":    strings.TrimSpace(req.UserID),
				"Balance": formatFloat(balance),
			}),
		})
	}
}

func abortWithError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("http: request failed path=%q code=%s err=%v", c.Request.URL.Path, code, err)
	}
	locale := requestctx.LocaleFromContext(c.Request.Context())
	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: apperrors.Localize(err, locale),
	}})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
