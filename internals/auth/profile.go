package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DefaultProfileURL is the Minecraft services profile endpoint
const DefaultProfileURL = "https://api.minecraftservices.com/minecraft/profile"

// Profile is the in-game identity behind a credential
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileResolver turns a fresh access token into a player profile.
// Swappable so the session manager stays testable offline.
type ProfileResolver interface {
	Profile(ctx context.Context, accessToken string) (*Profile, error)
}

// HTTPProfileResolver fetches the profile from the Minecraft services API
type HTTPProfileResolver struct {
	HTTP *http.Client
	URL  string
}

func NewProfileResolver(httpClient *http.Client) *HTTPProfileResolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPProfileResolver{HTTP: httpClient, URL: DefaultProfileURL}
}

func (r *HTTPProfileResolver) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := r.HTTP.Do(req)
	if err != nil {
		return nil, ErrNetworkFailure
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, &ProviderError{
			Code:        "profile_unavailable",
			Description: "this account does not own the game",
		}
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile request failed with status %d", res.StatusCode)
	}

	profile := Profile{}
	if err := json.NewDecoder(res.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
