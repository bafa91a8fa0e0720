package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bedrockchat/internal/domain"
)

// userThreadIndex is the GSI used to list a user's threads.
const userThreadIndex = "UserThread"

// DataLayerStore implements the shared chat table: profiles, threads and
// messages in a single table keyed PK/SK. Every item passes through the
// injected ItemCodec on its way in and out, so wrapping the codec is enough
// to change how values are represented.
type DataLayerStore struct {
	client *dynamodb.Client
	table  string
	codec  ItemCodec
}

func NewDataLayerStore(client *dynamodb.Client, table string, codec ItemCodec) *DataLayerStore {
	return &DataLayerStore{client: client, table: table, codec: codec}
}

func (s *DataLayerStore) GetProfile(ctx context.Context, identifier string) (*domain.Profile, error) {
	item, err := s.getItem(ctx, "USER#"+identifier, "USER")
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	return &domain.Profile{
		ID:         getString(item, "id"),
		Identifier: getString(item, "identifier"),
		CreatedAt:  getString(item, "createdAt"),
		Metadata:   getMap(item, "metadata"),
	}, nil
}

func (s *DataLayerStore) PutProfile(ctx context.Context, p *domain.Profile) error {
	item := map[string]any{
		"PK":         "USER#" + p.Identifier,
		"SK":         "USER",
		"id":         p.ID,
		"identifier": p.Identifier,
		"createdAt":  p.CreatedAt,
		"metadata":   orEmpty(p.Metadata),
	}
	if err := s.putItem(ctx, item); err != nil {
		return fmt.Errorf("putting profile: %w", err)
	}
	return nil
}

func (s *DataLayerStore) PutThread(ctx context.Context, t *domain.Thread) error {
	item := map[string]any{
		"PK":             "THREAD#" + t.ID,
		"SK":             "THREAD",
		"GSI1PK":         "USER#" + t.UserIdentifier,
		"GSI1SK":         "THREAD#" + t.CreatedAt,
		"id":             t.ID,
		"userIdentifier": t.UserIdentifier,
		"name":           t.Name,
		"createdAt":      t.CreatedAt,
		"metadata":       orEmpty(t.Metadata),
	}
	if err := s.putItem(ctx, item); err != nil {
		return fmt.Errorf("putting thread: %w", err)
	}
	return nil
}

func (s *DataLayerStore) GetThread(ctx context.Context, id string) (*domain.Thread, error) {
	item, err := s.getItem(ctx, "THREAD#"+id, "THREAD")
	if err != nil {
		return nil, fmt.Errorf("getting thread: %w", err)
	}
	if item == nil {
		return nil, nil
	}
	t := threadFromItem(item)
	return &t, nil
}

func (s *DataLayerStore) ListThreads(ctx context.Context, userIdentifier string) ([]domain.Thread, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(userThreadIndex),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: "USER#" + userIdentifier},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}

	threads := make([]domain.Thread, 0, len(out.Items))
	for _, raw := range out.Items {
		item, err := s.codec.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding thread: %w", err)
		}
		threads = append(threads, threadFromItem(item))
	}
	return threads, nil
}

func (s *DataLayerStore) PutMessage(ctx context.Context, m *domain.Message) error {
	item := map[string]any{
		"PK":        "THREAD#" + m.ThreadID,
		"SK":        "MESSAGE#" + m.CreatedAt + "#" + m.ID,
		"id":        m.ID,
		"threadId":  m.ThreadID,
		"role":      m.Role,
		"content":   m.Content,
		"createdAt": m.CreatedAt,
	}
	if err := s.putItem(ctx, item); err != nil {
		return fmt.Errorf("putting message: %w", err)
	}
	return nil
}

func (s *DataLayerStore) ListMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: "THREAD#" + threadID},
			":sk": &ddbtypes.AttributeValueMemberS{Value: "MESSAGE#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	msgs := make([]domain.Message, 0, len(out.Items))
	for _, raw := range out.Items {
		item, err := s.codec.Deserialize(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding message: %w", err)
		}
		msgs = append(msgs, domain.Message{
			ID:        getString(item, "id"),
			ThreadID:  getString(item, "threadId"),
			Role:      getString(item, "role"),
			Content:   getString(item, "content"),
			CreatedAt: getString(item, "createdAt"),
		})
	}
	return msgs, nil
}

func (s *DataLayerStore) getItem(ctx context.Context, pk, sk string) (map[string]any, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: pk},
			"SK": &ddbtypes.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return s.codec.Deserialize(out.Item)
}

func (s *DataLayerStore) putItem(ctx context.Context, item map[string]any) error {
	av, err := s.codec.Serialize(item)
	if err != nil {
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	return err
}

func threadFromItem(item map[string]any) domain.Thread {
	return domain.Thread{
		ID:             getString(item, "id"),
		UserIdentifier: getString(item, "userIdentifier"),
		Name:           getString(item, "name"),
		CreatedAt:      getString(item, "createdAt"),
		Metadata:       getMap(item, "metadata"),
	}
}

func getString(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func getMap(item map[string]any, key string) map[string]any {
	m, _ := item[key].(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
