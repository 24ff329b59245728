// Package aws builds the SDK clients used for loyalty notifications.
package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"travel-workers/internal/common/config"
)

// SNSAPI is the subset of the SNS client the topic notifier calls.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESAPI is the subset of the SES client the email notifier calls.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Clients holds one client per enabled notification channel; disabled
// channels are nil.
type Clients struct {
	SNS SNSAPI
	SES SESAPI
}

// NewClients resolves credentials from the default chain only when at least
// one channel is enabled.
func NewClients(ctx context.Context, nc config.NotificationConfig) (*Clients, error) {
	out := &Clients{}
	if !nc.SNS.Enabled && !nc.Email.Enabled {
		return out, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(nc.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if nc.SNS.Enabled {
		out.SNS = sns.NewFromConfig(cfg)
	}
	if nc.Email.Enabled {
		out.SES = ses.NewFromConfig(cfg)
	}
	return out, nil
}
