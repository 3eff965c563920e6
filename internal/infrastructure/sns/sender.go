package sns

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-auth-service/internal/config"
)

// PublishAPI is the subset of the SNS client the publisher uses.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicPublisher hands messages to an SNS topic. A subscriber (email
// subscription, Lambda, queue) does the final delivery, routed by the
// "email" message attribute.
type TopicPublisher struct {
	client   PublishAPI
	topicARN string
}

func NewTopicPublisher(ctx context.Context, cfg *config.Config) (*TopicPublisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, errors.New("SNS_TOPIC_ARN is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	var opts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return newTopicPublisher(sns.NewFromConfig(awsCfg, opts...), cfg.SNSTopicARN), nil
}

func newTopicPublisher(client PublishAPI, topicARN string) *TopicPublisher {
	return &TopicPublisher{client: client, topicARN: topicARN}
}

func (p *TopicPublisher) Send(ctx context.Context, to, subject, body string) error {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"email": {DataType: aws.String("String"), StringValue: aws.String(to)},
		},
	})
	return err
}
