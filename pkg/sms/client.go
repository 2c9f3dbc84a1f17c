package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/mindcare_backend/config"
)

var ErrMissingField = errors.New("sms: phone, template and parameters are required")

// Client sends templated SMS via sms.ir.
type Client struct {
	client           *smsir.Client
	enabled          bool
	statusTemplateID string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.CrisisStatusTemplateID == "" {
		return nil, fmt.Errorf("sms.ir crisis status template required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:           client,
		enabled:          true,
		statusTemplateID: cfg.SMSIR.CrisisStatusTemplateID,
	}, nil
}

// SendCrisisStatus tells a patient their crisis moved to status. The template
// must declare the parameters "name" and "status".
func (c *Client) SendCrisisStatus(ctx context.Context, phone, patientName, status string) error {
	if !c.enabled {
		return nil
	}
	return c.send(ctx, phone, c.statusTemplateID, []smsir.UltraFastParameter{
		{Key: "name", Value: patientName},
		{Key: "status", Value: status},
	})
}

func (c *Client) send(ctx context.Context, phone, templateID string, params []smsir.UltraFastParameter) error {
	if phone == "" || templateID == "" || len(params) == 0 {
		return ErrMissingField
	}
	for _, p := range params {
		if p.Value == "" {
			return ErrMissingField
		}
	}

	_, err := c.client.Verification.UltraFastSend(ctx, &smsir.UltraFastSendRequest{
		Mobile:     phone,
		TemplateID: templateID,
		Parameters: params,
	})
	if err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
