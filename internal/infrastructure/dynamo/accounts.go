package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-service/internal/domain"
)

type accountItem struct {
	Email        string `dynamodbav:"email"`
	PasswordHash string `dynamodbav:"password_hash"`
	Requires2FA  bool   `dynamodbav:"requires_2fa"`
}

// AccountStore provides typed DynamoDB operations for the accounts table.
// PK: email.
type AccountStore struct {
	client    API
	tableName string
	hasher    domain.PasswordHasher
}

var _ domain.AccountStore = (*AccountStore)(nil)

func NewAccountStore(client API, tableName string, hasher domain.PasswordHasher) *AccountStore {
	return &AccountStore{client: client, tableName: tableName, hasher: hasher}
}

// Add writes the account only if no item with the same email exists.
func (s *AccountStore) Add(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(accountItem{
		Email:        a.Email.String(),
		PasswordHash: a.PasswordHash,
		Requires2FA:  a.Requires2FA,
	})
	if err != nil {
		return unexpected("marshal account", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#e)"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("put account %s: %w", a.Email, domain.ErrAccountExists)
	}
	if err != nil {
		return unexpected("put account", err)
	}
	return nil
}

func (s *AccountStore) Get(ctx context.Context, email domain.Email) (*domain.Account, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            strKey(fieldEmail, email.String()),
		ConsistentRead: aws.Bool(true),
		// only the attributes accountItem maps
		ProjectionExpression: aws.String("#e, #h, #r"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEmail,
			"#h": fieldPasswordHash,
			"#r": fieldRequires2FA,
		},
	})
	if err != nil {
		return nil, unexpected("get account", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("get %s: %w", email, domain.ErrAccountNotFound)
	}
	var item accountItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, unexpected("unmarshal account", err)
	}
	stored, err := domain.ParseEmail(item.Email)
	if err != nil {
		return nil, unexpected("decode account", err)
	}
	return &domain.Account{Email: stored, PasswordHash: item.PasswordHash, Requires2FA: item.Requires2FA}, nil
}

func (s *AccountStore) Validate(ctx context.Context, email domain.Email, password domain.Password) error {
	a, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	return s.hasher.Verify(ctx, a.PasswordHash, password)
}
