package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bedrockchat/internal/domain"
)

// CredentialRepo stores credential records in a table keyed on username.
type CredentialRepo struct {
	client *dynamodb.Client
	table  string
}

func NewCredentialRepo(client *dynamodb.Client, table string) *CredentialRepo {
	return &CredentialRepo{client: client, table: table}
}

func (r *CredentialRepo) Get(ctx context.Context, username string) (*domain.CredentialRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]ddbtypes.AttributeValue{
			"username": &ddbtypes.AttributeValueMemberS{Value: username},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting credential: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec domain.CredentialRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("decoding credential: %w", err)
	}
	return &rec, nil
}

func (r *CredentialRepo) Put(ctx context.Context, rec *domain.CredentialRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("putting credential: %w", err)
	}
	return nil
}
