package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/brightforge/agency-leads/internal/usecase"
)

const (
	DefaultBaseURL = "https://api.hubapi.com"
	contactsPath   = "/crm/v3/objects/contacts"
)

// Client talks to the HubSpot CRM v3 contacts API with one access token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker

	onUnauthorized func()
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) CreateContact(ctx context.Context, props usecase.ContactProperties) (string, error) {
	var created contactResponse
	err := c.do(ctx, http.MethodPost, contactsPath, contactInput{Properties: props}, &created)
	if err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("hubspot: create contact returned no id")
	}
	return created.ID, nil
}

// FindContactByEmail runs an exact-match search limited to one result.
func (c *Client) FindContactByEmail(ctx context.Context, email string) (string, error) {
	req := searchRequest{
		FilterGroups: []searchFilterGroup{{
			Filters: []searchFilter{{
				PropertyName: "email",
				Operator:     "EQ",
				Value:        email,
			}},
		}},
		Properties: []string{"email", "firstname", "lastname"},
		Limit:      1,
	}

	var found searchResponse
	if err := c.do(ctx, http.MethodPost, contactsPath+"/search", req, &found); err != nil {
		return "", err
	}
	if len(found.Results) == 0 || found.Results[0].ID == "" {
		return "", usecase.ErrContactNotFound
	}
	return found.Results[0].ID, nil
}

func (c *Client) UpdateContact(ctx context.Context, contactID string, props usecase.ContactProperties) error {
	path := contactsPath + "/" + url.PathEscape(contactID)
	return c.do(ctx, http.MethodPatch, path, contactInput{Properties: props}, nil)
}

// WithBreaker routes every call through cb. Clients minted per token share
// one breaker through the factory.
func (c *Client) WithBreaker(cb *gobreaker.CircuitBreaker) *Client {
	c.breaker = cb
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var err error
	if c.breaker == nil {
		err = c.roundTrip(ctx, method, path, in, out)
	} else {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, c.roundTrip(ctx, method, path, in, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("hubspot: %s %s: %w", method, path, err)
		}
	}

	var apiErr *APIError
	if c.onUnauthorized != nil && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.onUnauthorized()
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("hubspot: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("hubspot: build request: %w", err)
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("hubspot: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hubspot: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("hubspot: decode response: %w", err)
	}
	return nil
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
