package dynamo

import (
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-service/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func strValue(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

// unixValue encodes t as a DynamoDB number in Unix seconds, the format the
// TTL sweeper expects.
func unixValue(t time.Time) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", t.Unix())}
}

// expired reports whether a TTL attribute is in the past. DynamoDB deletes
// expired items lazily, so reads must check it themselves.
func expired(expiresAt int64, now time.Time) bool {
	return expiresAt <= now.Unix()
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func unexpected(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUnexpected, err)
}
