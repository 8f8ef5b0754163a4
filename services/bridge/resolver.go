package bridge

import (
	"context"
	"time"

	"igbridge/models"
	"igbridge/services/oauth"

	"go.uber.org/zap"
)

// Resolve runs the callback pipeline: exchange the code, extend the token,
// list the user's Pages, find the first one with a linked Instagram account
// and park the result under the device code carried in state. The first
// failing step aborts the flow and nothing is stored.
func (s *DefaultResolverService) Resolve(ctx context.Context, code, state string) (*Result, error) {
	if code == "" {
		return nil, ErrInvalidCallback
	}
	authState, err := oauth.DecodeAuthState(state)
	if err != nil {
		return nil, ErrInvalidCallback
	}
	logger := s.logger().With(zap.String("deviceCode", authState.DeviceCode))

	shortToken, err := s.Graph.ExchangeCode(ctx, code)
	if err != nil {
		return nil, &StepError{Step: StepExchangeCode, Err: err}
	}

	longToken, err := s.Graph.ExtendToken(ctx, shortToken)
	if err != nil {
		return nil, &StepError{Step: StepExtendToken, Err: err}
	}

	pages, err := s.Graph.ListPages(ctx, longToken)
	if err != nil {
		return nil, &StepError{Step: StepListPages, Err: err}
	}
	if len(pages) == 0 {
		logger.Info("resolver: user granted no pages")
		return nil, ErrNoPages
	}

	page, found := s.discoverAccount(ctx, logger, pages, longToken)
	if !found {
		logger.Info("resolver: no page has a linked instagram account", zap.Int("pages", len(pages)))
		return nil, ErrNoBusinessAccount
	}

	bundle := models.CredentialBundle{
		Ready:             true,
		AccessToken:       longToken,
		BusinessAccountID: page.BusinessAccountID,
		CreatedAt:         s.now(),
	}
	if err := s.Store.Put(ctx, authState.DeviceCode, bundle); err != nil {
		return nil, &StepError{Step: StepStore, Err: err}
	}

	logger.Info("resolver: flow completed",
		zap.String("pageID", page.ID),
		zap.String("igUserID", page.BusinessAccountID))
	return &Result{DeviceCode: authState.DeviceCode, Bundle: bundle, PageID: page.ID}, nil
}

// discoverAccount probes pages in order and stops at the first one with a
// linked account. A failed probe only skips that page.
func (s *DefaultResolverService) discoverAccount(ctx context.Context, logger *zap.Logger, pages []models.PageCandidate, token string) (models.PageCandidate, bool) {
	for _, p := range pages {
		if p.ID == "" {
			continue
		}
		details, err := s.Graph.PageDetails(ctx, p.ID, token)
		if err != nil {
			logger.Warn("resolver: failed to fetch page details",
				zap.String("pageID", p.ID),
				zap.String("step", string(StepDiscoverAccount)),
				zap.Error(err))
			continue
		}
		if details.BusinessAccountID != "" {
			details.ID = p.ID
			return details, true
		}
	}
	return models.PageCandidate{}, false
}

func (s *DefaultResolverService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultResolverService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

var _ ResolverService = (*DefaultResolverService)(nil)
