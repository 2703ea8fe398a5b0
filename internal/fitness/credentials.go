package fitness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes are the read-only Fit scopes a stored token must carry.
var Scopes = []string{
	"https://www.googleapis.com/auth/fitness.activity.read",
	"https://www.googleapis.com/auth/fitness.location.read",
	"https://www.googleapis.com/auth/fitness.body.read",
	"https://www.googleapis.com/auth/fitness.heart_rate.read",
	"https://www.googleapis.com/auth/fitness.sleep.read",
}

var (
	ErrNoToken      = errors.New("no stored token")
	ErrTokenExpired = errors.New("token expired and cannot be refreshed")
)

// storedToken accepts both the oauth2 token layout and the google-auth
// credential layout ("token" instead of "access_token").
type storedToken struct {
	AccessToken  string `json:"access_token,omitempty"`
	Token        string `json:"token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Expiry       string `json:"expiry,omitempty"`
}

func (st storedToken) oauth2() (*oauth2.Token, error) {
	tok := &oauth2.Token{
		AccessToken:  st.AccessToken,
		TokenType:    st.TokenType,
		RefreshToken: st.RefreshToken,
	}
	if tok.AccessToken == "" {
		tok.AccessToken = st.Token
	}
	if st.Expiry != "" {
		exp, err := parseExpiry(st.Expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry %q: %w", st.Expiry, err)
		}
		tok.Expiry = exp
	}
	return tok, nil
}

// Naive timestamps are UTC.
func parseExpiry(s string) (time.Time, error) {
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range []string{"2006-01-02T15:04:05.999999999-07:00", "2006-01-02T15:04:05.999999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time layout")
}

// FileCredentials serves a token bundle stored on disk, refreshing it through
// the OAuth client when it has expired and writing the refreshed bundle back.
type FileCredentials struct {
	path   string
	oauth  *oauth2.Config
	logger *zap.Logger
}

// NewFileCredentials reads tokens from path. clientID and clientSecret are
// only needed to refresh expired tokens.
func NewFileCredentials(path, clientID, clientSecret string, logger *zap.Logger) *FileCredentials {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCredentials{
		path: path,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
		logger: logger,
	}
}

// Credential returns a live token.
func (c *FileCredentials) Credential(ctx context.Context) (*oauth2.Token, error) {
	tok, err := c.load()
	if err != nil {
		return nil, err
	}
	if tok.Valid() {
		return tok, nil
	}
	if tok.RefreshToken == "" || c.oauth.ClientID == "" {
		return nil, ErrTokenExpired
	}

	fresh, err := c.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	}
	c.logger.Info("token refreshed", zap.Time("expiry", fresh.Expiry))
	if err := c.save(fresh); err != nil {
		c.logger.Warn("failed to persist refreshed token", zap.Error(err))
	}
	return fresh, nil
}

func (c *FileCredentials) load() (*oauth2.Token, error) {
	if c.path == "" {
		return nil, ErrNoToken
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	tok, err := st.oauth2()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, ErrNoToken
	}
	return tok, nil
}

func (c *FileCredentials) save(tok *oauth2.Token) error {
	st := storedToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		st.Expiry = tok.Expiry.UTC().Format(time.RFC3339)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}
