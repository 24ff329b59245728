package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	awsclients "travel-workers/internal/common/aws"
	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/models"
)

// SESNotifier emails notifications to a fixed recipient list.
type SESNotifier struct {
	client    awsclients.SESAPI
	fromEmail string
	to        []string
}

func NewSESNotifier(client awsclients.SESAPI, fromEmail string, to []string) *SESNotifier {
	return &SESNotifier{client: client, fromEmail: fromEmail, to: to}
}

func (s *SESNotifier) Notify(ctx context.Context, n models.Notification) error {
	if len(s.to) == 0 {
		return nil
	}
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: s.to,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(n.Title),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(n.Body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	})
	if err != nil {
		return apperrors.NewNotificationFailedError("ses", err)
	}
	return nil
}
