package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"igbridge/models"
	"igbridge/services/handoff"

	"go.uber.org/zap"
)

// GraphAPI is the slice of the Graph API the resolver needs.
type GraphAPI interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	ExtendToken(ctx context.Context, shortToken string) (string, error)
	ListPages(ctx context.Context, accessToken string) ([]models.PageCandidate, error)
	PageDetails(ctx context.Context, pageID, accessToken string) (models.PageCandidate, error)
}

// ResolverService completes the consent callback and parks the result for the device.
type ResolverService interface {
	Resolve(ctx context.Context, code, state string) (*Result, error)
}

// DefaultResolverService is the production implementation.
type DefaultResolverService struct {
	Graph  GraphAPI
	Store  handoff.Store
	Logger *zap.Logger
	Now    func() time.Time
}

// Result describes a successful resolution.
type Result struct {
	DeviceCode string
	Bundle     models.CredentialBundle
	PageID     string
}

// Step names one stage of the callback pipeline.
type Step string

const (
	StepExchangeCode    Step = "exchange_code"
	StepExtendToken     Step = "extend_token"
	StepListPages       Step = "list_pages"
	StepDiscoverAccount Step = "discover_account"
	StepStore           Step = "store"
)

var (
	ErrInvalidCallback   = errors.New("callback requires code and a well-formed state")
	ErrNoPages           = errors.New("no facebook pages granted")
	ErrNoBusinessAccount = errors.New("no page has a linked instagram account")
)

// StepError reports which upstream step failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
