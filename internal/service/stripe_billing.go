package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crm-saas-backend/internal/database/models"
)

// StripeBillingGateway synchronizes tenants with Stripe customers over the
// Stripe REST API. Only the customer object is managed here; subscriptions
// and invoicing stay inside Stripe.
type StripeBillingGateway struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewStripeBillingGateway creates a gateway talking to the Stripe API
func NewStripeBillingGateway(apiKey string) *StripeBillingGateway {
	return &StripeBillingGateway{
		apiKey:  apiKey,
		baseURL: "https://api.stripe.com",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SyncCustomer creates the Stripe customer for a tenant, or updates it when
// the tenant already carries a customer ID
func (g *StripeBillingGateway) SyncCustomer(tenant *models.Tenant) (string, error) {
	form := url.Values{}
	form.Set("name", tenant.Name)
	form.Set("email", tenant.Email)
	form.Set("metadata[tenant_id]", tenant.ID.String())
	form.Set("metadata[tenant_slug]", tenant.Slug)

	path := "/v1/customers"
	if tenant.StripeCustomerID != "" {
		path += "/" + tenant.StripeCustomerID
	}

	var customer struct {
		ID string `json:"id"`
	}
	if err := g.do(http.MethodPost, path, form, &customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// DeleteCustomer removes the Stripe customer backing a deleted tenant
func (g *StripeBillingGateway) DeleteCustomer(customerID string) error {
	if customerID == "" {
		return nil
	}
	return g.do(http.MethodDelete, "/v1/customers/"+customerID, nil, nil)
}

func (g *StripeBillingGateway) do(method, path string, form url.Values, target interface{}) error {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequest(method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build stripe request: %w", err)
	}
	req.SetBasicAuth(g.apiKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stripe returned status %d for %s", resp.StatusCode, path)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}
