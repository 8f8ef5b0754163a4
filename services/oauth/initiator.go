package oauth

import (
	"errors"
	"strings"

	"golang.org/x/oauth2"
)

// Permissions requested on the consent dialog.
const (
	ScopeInstagramBasic          = "instagram_basic"
	ScopePagesShowList           = "pages_show_list"
	ScopeInstagramContentPublish = "instagram_content_publish"
)

var DefaultScopes = []string{
	ScopeInstagramBasic,
	ScopePagesShowList,
	ScopeInstagramContentPublish,
}

var ErrMissingDeviceCode = errors.New("device_code missing")

type InitiatorConfig struct {
	ClientID    string
	DialogURL   string
	CallbackURL string
	Scopes      []string
}

// Initiator builds the redirect that sends the user to the consent dialog.
type Initiator struct {
	oauth  *oauth2.Config
	scopes string
}

func NewInitiator(cfg InitiatorConfig) *Initiator {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &Initiator{
		// Scopes stay empty here: Facebook expects them comma separated, and
		// oauth2.Config would join them with spaces.
		oauth: &oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.CallbackURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.DialogURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		scopes: strings.Join(scopes, ","),
	}
}

// AuthURL returns the consent URL for deviceCode along with the state it carries.
func (i *Initiator) AuthURL(deviceCode string) (string, AuthState, error) {
	if deviceCode == "" {
		return "", AuthState{}, ErrMissingDeviceCode
	}
	state, err := NewAuthState(deviceCode)
	if err != nil {
		return "", AuthState{}, err
	}
	encoded, err := state.Encode()
	if err != nil {
		return "", AuthState{}, err
	}
	return i.oauth.AuthCodeURL(encoded, oauth2.SetAuthURLParam("scope", i.scopes)), state, nil
}

// CallbackURL is the redirect_uri sent with every request.
func (i *Initiator) CallbackURL() string {
	return i.oauth.RedirectURL
}
