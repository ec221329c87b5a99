package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
)

// AlertClient turns guard violation flags into queued email notifications
// addressed to the guard's company admin.
type AlertClient struct {
	Client *Client
	Pool   *pgxpool.Pool
}

// NewAlertClient constructs an alert client.
func NewAlertClient(client *Client, pool *pgxpool.Pool) *AlertClient {
	return &AlertClient{Client: client, Pool: pool}
}

// EnqueueViolationAlert queues a mail:send task about a flagged guard.
func (a *AlertClient) EnqueueViolationAlert(ctx context.Context, guard *guards.Guard, reason string) error {
	if a == nil || a.Client == nil {
		return errors.New("alerts: client not configured")
	}
	to, err := a.adminEmail(ctx, guard.CompanyID)
	if err != nil {
		return err
	}
	_, err = a.Client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Guard %s requires approval", guard.Name),
		Body:    fmt.Sprintf("%s was signed out and flagged for review.\n\nReason: %s\n", guard.Name, reason),
	})
	return err
}

func (a *AlertClient) adminEmail(ctx context.Context, companyID int64) (string, error) {
	var email string
	err := a.Pool.QueryRow(ctx, `
		SELECT email FROM users
		WHERE company_id = $1 AND role = $2 AND is_active
		ORDER BY id
		LIMIT 1`, companyID, shared.RoleCompanyAdmin).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("alerts: no admin for company %d", companyID)
		}
		return "", err
	}
	return email, nil
}
