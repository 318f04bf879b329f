package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AdminClient talks to the Supabase Admin API.
// wikictl uses it to grant and revoke the reviewer flag in app_metadata,
// which is where HasAdminRole looks.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates a new Supabase Admin API client.
// Requires the service role key (SUPABASE_KEY) for elevated permissions.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AdminUser is the subset of a Supabase user the CLI prints
type AdminUser struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	Role        string                 `json:"role"`
	AppMetadata map[string]interface{} `json:"app_metadata"`
}

type listUsersResponse struct {
	Users []AdminUser `json:"users"`
}

type updateUserRequest struct {
	AppMetadata map[string]interface{} `json:"app_metadata"`
}

func (c *AdminClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// FindUserByEmail searches the user list for an exact email match.
func (c *AdminClient) FindUserByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var list listUsersResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users", nil, &list); err != nil {
		return nil, err
	}

	for i := range list.Users {
		if list.Users[i].Email == email {
			return &list.Users[i], nil
		}
	}
	return nil, fmt.Errorf("user %s not found", email)
}

// SetAdmin writes is_admin into the user's app_metadata. Other app_metadata
// keys are preserved because Supabase merges the object.
func (c *AdminClient) SetAdmin(ctx context.Context, userID string, isAdmin bool) (*AdminUser, error) {
	var user AdminUser
	payload := updateUserRequest{AppMetadata: map[string]interface{}{"is_admin": isAdmin}}
	if err := c.do(ctx, http.MethodPut, "/auth/v1/admin/users/"+userID, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
