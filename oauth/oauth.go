package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const tokenURL = "https://discord.com/api/oauth2/token"

// Tokens is the Discord OAuth token response.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// Client exchanges authorization codes against the Discord OAuth endpoint
// and resolves the identity behind the resulting access token.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

// Exchange trades a one-time authorization code for tokens and the identity
// of the user who authorized it.
func (c *Client) Exchange(ctx context.Context, authCode string) (*Tokens, *discordgo.User, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURI},
		"grant_type":    {"authorization_code"},
		"scope":         {"identify guilds.join"},
		"code":          {authCode},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error exchanging authorization code: %v", err)
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tokens Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		log.Printf("Error decoding token response: %v", err)
		return nil, nil, err
	}
	if tokens.AccessToken == "" {
		return nil, nil, fmt.Errorf("token endpoint returned no access token")
	}

	user, err := c.identity(tokens.AccessToken)
	if err != nil {
		log.Printf("Error fetching identity: %v", err)
		return nil, nil, err
	}

	return &tokens, user, nil
}

// identity fetches the current user with a bearer session.
func (c *Client) identity(accessToken string) (*discordgo.User, error) {
	session, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, err
	}
	return session.User("@me")
}
