package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-service/internal/domain"
)

type bannedTokenItem struct {
	Token     string `dynamodbav:"token"`
	ExpiresAt int64  `dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// BannedTokenStore records revoked tokens in a table with TTL on expires_at.
// PK: token.
type BannedTokenStore struct {
	client    API
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

var _ domain.BannedTokenStore = (*BannedTokenStore)(nil)

func NewBannedTokenStore(client API, tableName string, ttl time.Duration) *BannedTokenStore {
	return &BannedTokenStore{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

func (s *BannedTokenStore) Ban(ctx context.Context, token string) error {
	item, err := attributevalue.MarshalMap(bannedTokenItem{
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return unexpected("marshal banned token", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return unexpected("put banned token", err)
	}
	return nil
}

func (s *BannedTokenStore) IsBanned(ctx context.Context, token string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            strKey(fieldToken, token),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, unexpected("get banned token", err)
	}
	if out.Item == nil {
		return false, nil
	}
	var item bannedTokenItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return false, unexpected("unmarshal banned token", err)
	}
	return !expired(item.ExpiresAt, s.now()), nil
}
