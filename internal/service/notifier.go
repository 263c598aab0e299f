package service

import (
	"crm-saas-backend/internal/database/models"

	"github.com/sirupsen/logrus"
)

// Notifier is the fire-and-forget notification boundary. Implementations must
// not block the caller and are never invoked inside a transaction; failures
// are logged and swallowed.
type Notifier interface {
	TenantCreated(tenant *models.Tenant)
	UserInvited(user *models.User)
	RoleAssigned(user *models.User, role *models.Role)
	SecurityEvent(user *models.User, event string)
}

// BillingGateway is the payment-processor boundary. Sync runs as an explicit
// orchestration step of tenant create/update, after the transaction commits,
// and its failure never fails the tenant operation.
type BillingGateway interface {
	SyncCustomer(tenant *models.Tenant) (customerID string, err error)
	DeleteCustomer(customerID string) error
}

// LogNotifier logs notification events instead of delivering them. Used when
// no SMTP transport is configured and in tests.
type LogNotifier struct{}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) TenantCreated(tenant *models.Tenant) {
	logrus.WithFields(logrus.Fields{"tenant": tenant.Slug}).Info("tenant created")
}

func (n *LogNotifier) UserInvited(user *models.User) {
	logrus.WithFields(logrus.Fields{"email": user.Email}).Info("user invited")
}

func (n *LogNotifier) RoleAssigned(user *models.User, role *models.Role) {
	logrus.WithFields(logrus.Fields{"email": user.Email, "role": role.Name}).Info("role assigned")
}

func (n *LogNotifier) SecurityEvent(user *models.User, event string) {
	logrus.WithFields(logrus.Fields{"email": user.Email, "event": event}).Warn("security event")
}

// NoopBillingGateway is used when no payment processor is configured
type NoopBillingGateway struct{}

// NewNoopBillingGateway creates a new no-op billing gateway
func NewNoopBillingGateway() *NoopBillingGateway {
	return &NoopBillingGateway{}
}

func (g *NoopBillingGateway) SyncCustomer(tenant *models.Tenant) (string, error) {
	return tenant.StripeCustomerID, nil
}

func (g *NoopBillingGateway) DeleteCustomer(customerID string) error {
	return nil
}
