package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-service/internal/domain"
)

// twoFACodeItem stores one pending challenge per email.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type twoFACodeItem struct {
	Email          string `dynamodbav:"email"`
	LoginAttemptID string `dynamodbav:"login_attempt_id"`
	Code           string `dynamodbav:"code"`
	ExpiresAt      int64  `dynamodbav:"expires_at"`
}

// TwoFACodeStore manages pending 2FA challenges. PK: email.
type TwoFACodeStore struct {
	client    API
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

var _ domain.TwoFACodeStore = (*TwoFACodeStore)(nil)

func NewTwoFACodeStore(client API, tableName string, ttl time.Duration) *TwoFACodeStore {
	return &TwoFACodeStore{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

func (s *TwoFACodeStore) Put(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	item, err := attributevalue.MarshalMap(twoFACodeItem{
		Email:          email.String(),
		LoginAttemptID: id.String(),
		Code:           code.String(),
		ExpiresAt:      s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return unexpected("marshal 2FA code", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return unexpected("put 2FA code", err)
	}
	return nil
}

func (s *TwoFACodeStore) Remove(ctx context.Context, email domain.Email) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       strKey(fieldEmail, email.String()),
	}); err != nil {
		return unexpected("delete 2FA code", err)
	}
	return nil
}

func (s *TwoFACodeStore) Get(ctx context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            strKey(fieldEmail, email.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, unexpected("get 2FA code", err)
	}
	if out.Item == nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("get %s: %w", email, domain.ErrLoginAttemptIDNotFound)
	}
	var item twoFACodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, unexpected("unmarshal 2FA code", err)
	}
	if expired(item.ExpiresAt, s.now()) {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, fmt.Errorf("get %s: %w", email, domain.ErrLoginAttemptIDNotFound)
	}
	id, err := domain.ParseLoginAttemptID(item.LoginAttemptID)
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, unexpected("decode 2FA code", err)
	}
	code, err := domain.ParseTwoFACode(item.Code)
	if err != nil {
		return domain.LoginAttemptID{}, domain.TwoFACode{}, unexpected("decode 2FA code", err)
	}
	return id, code, nil
}

// Consume is a conditional delete: it only removes the item while it still
// holds (id, code) and has not expired.
func (s *TwoFACodeStore) Consume(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 strKey(fieldEmail, email.String()),
		ConditionExpression: aws.String("#id = :id AND #c = :c AND #x > :now"),
		ExpressionAttributeNames: map[string]string{
			"#id": fieldLoginAttemptID,
			"#c":  fieldCode,
			"#x":  fieldExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id":  strValue(id.String()),
			":c":   strValue(code.String()),
			":now": unixValue(s.now()),
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("consume %s: %w", email, domain.ErrLoginAttemptIDNotFound)
	}
	if err != nil {
		return unexpected("consume 2FA code", err)
	}
	return nil
}
