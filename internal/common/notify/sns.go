package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	awsclients "travel-workers/internal/common/aws"
	apperrors "travel-workers/internal/common/errors"
	"travel-workers/internal/models"
)

// SNSNotifier publishes each notification as JSON to a topic, with the type
// and user id as message attributes for subscription filtering.
type SNSNotifier struct {
	client   awsclients.SNSAPI
	topicARN string
}

func NewSNSNotifier(client awsclients.SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (s *SNSNotifier) Notify(ctx context.Context, n models.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(truncate(n.Title, 100)),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.Type),
			},
			"userId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.UserID),
			},
		},
	})
	if err != nil {
		return apperrors.NewNotificationFailedError("sns", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
