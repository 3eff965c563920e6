package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-auth-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	return &sns.PublishOutput{}, args.Error(0)
}

const topic = "arn:aws:sns:us-east-1:000000000000:two-fa"

func TestTopicPublisher_Send(t *testing.T) {
	api := &mockPublisher{}
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		attr, ok := in.MessageAttributes["email"]
		return aws.ToString(in.TopicArn) == topic &&
			aws.ToString(in.Subject) == "Code" &&
			aws.ToString(in.Message) == "123456" &&
			in.PhoneNumber == nil &&
			ok && aws.ToString(attr.StringValue) == "a@b.com"
	})).Return(nil)

	p := newTopicPublisher(api, topic)
	require.NoError(t, p.Send(context.Background(), "a@b.com", "Code", "123456"))
	api.AssertExpectations(t)
}

func TestTopicPublisher_Send_Error(t *testing.T) {
	api := &mockPublisher{}
	boom := errors.New("throttled")
	api.On("Publish", mock.Anything, mock.Anything).Return(boom)

	err := newTopicPublisher(api, topic).Send(context.Background(), "a@b.com", "s", "b")
	assert.ErrorIs(t, err, boom)
}

func TestNewTopicPublisher_RequiresTopic(t *testing.T) {
	_, err := NewTopicPublisher(context.Background(), &config.Config{SNSRegion: "us-east-1"})
	assert.ErrorContains(t, err, "SNS_TOPIC_ARN")
}
