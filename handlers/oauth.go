package handlers

import (
	"errors"
	"net/http"

	"igbridge/models"
	"igbridge/services/bridge"
	"igbridge/services/handoff"
	"igbridge/services/oauth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorizer builds consent URLs for a device code.
type Authorizer interface {
	AuthURL(deviceCode string) (string, oauth.AuthState, error)
}

// OAuthHandler serves the browser side of the flow and the device poll.
type OAuthHandler struct {
	Initiator Authorizer
	Resolver  bridge.ResolverService
	Store     handoff.Store
}

func NewOAuthHandler(initiator Authorizer, resolver bridge.ResolverService, store handoff.Store) *OAuthHandler {
	return &OAuthHandler{
		Initiator: initiator,
		Resolver:  resolver,
		Store:     store,
	}
}

// StartHandler redirects the browser to the consent dialog.
func (h *OAuthHandler) StartHandler(c *gin.Context) {
	logger := getLogger(c)
	deviceCode := c.Query("device_code")

	authURL, _, err := h.Initiator.AuthURL(deviceCode)
	switch {
	case errors.Is(err, oauth.ErrMissingDeviceCode):
		c.String(http.StatusBadRequest, "device_code missing")
		return
	case errors.Is(err, oauth.ErrInvalidDevice):
		c.String(http.StatusBadRequest, "device_code must not contain %q", oauth.StateSeparator)
		return
	case err != nil:
		logger.Error("Failed to build consent URL", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to start authorization")
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// CallbackHandler completes the flow when the consent dialog redirects back.
func (h *OAuthHandler) CallbackHandler(c *gin.Context) {
	logger := getLogger(c)

	result, err := h.Resolver.Resolve(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		h.renderCallbackError(c, logger, err)
		return
	}
	logger.Info("OAuth callback completed", zap.String("deviceCode", result.DeviceCode))
	c.HTML(http.StatusOK, PageConnected, nil)
}

func (h *OAuthHandler) renderCallbackError(c *gin.Context, logger *zap.Logger, err error) {
	var stepErr *bridge.StepError
	switch {
	case errors.Is(err, bridge.ErrInvalidCallback):
		c.String(http.StatusBadRequest, "Bad request")
	case errors.Is(err, bridge.ErrNoPages):
		c.HTML(http.StatusBadRequest, PageNoPages, nil)
	case errors.Is(err, bridge.ErrNoBusinessAccount):
		c.HTML(http.StatusBadRequest, PageNoBusinessAccount, nil)
	case errors.As(err, &stepErr):
		logger.Warn("OAuth callback failed", zap.String("step", string(stepErr.Step)), zap.Error(stepErr.Err))
		if stepErr.Step == bridge.StepStore {
			c.String(http.StatusInternalServerError, "Failed to save credentials")
			return
		}
		c.String(http.StatusBadRequest, "%s: %v", stepMessage(stepErr.Step), stepErr.Err)
	default:
		logger.Error("OAuth callback failed", zap.Error(err))
		c.String(http.StatusBadRequest, "Authorization failed: %v", err)
	}
}

func stepMessage(step bridge.Step) string {
	switch step {
	case bridge.StepExchangeCode:
		return "Token exchange failed (short-lived)"
	case bridge.StepExtendToken:
		return "Token exchange failed (long-lived)"
	case bridge.StepListPages:
		return "Failed to list pages"
	default:
		return "Authorization failed"
	}
}

// ExchangeHandler hands a completed bundle to the polling device, once.
// It never fails: anything short of a bundle reads as not ready.
func (h *OAuthHandler) ExchangeHandler(c *gin.Context) {
	logger := getLogger(c)

	// A missing or empty device code matches nothing; no flow can store under "".
	deviceCode, ok := c.GetQuery("device_code")
	if !ok || deviceCode == "" {
		c.JSON(http.StatusOK, models.NewExchangeResponse(nil))
		return
	}

	bundle, found, err := h.Store.Take(c.Request.Context(), deviceCode)
	if err != nil {
		logger.Error("Failed to read handoff store", zap.Error(err))
	}
	if !found {
		bundle = nil
	}
	c.JSON(http.StatusOK, models.NewExchangeResponse(bundle))
}

// HealthHandler reports liveness.
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
