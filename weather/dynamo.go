package weather

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/bites/store"
)

// DefaultTable is the DynamoDB table holding weather snapshots.
const DefaultTable = "bites_weather"

// DynamoAPI is the subset of the DynamoDB client used by DynamoCache.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// snapshotItem is the DynamoDB item layout. The table's TTL attribute must be "ttl".
type snapshotItem struct {
	RestaurantID string `dynamodbav:"restaurant_id"`
	Payload      []byte `dynamodbav:"payload"`
	TTL          int64  `dynamodbav:"ttl"`
}

// DynamoCache stores snapshots in a DynamoDB table with native TTL expiry.
type DynamoCache struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

// NewDynamoCache creates a cache on table. An empty table means DefaultTable.
func NewDynamoCache(client DynamoAPI, table string) *DynamoCache {
	if table == "" {
		table = DefaultTable
	}
	return &DynamoCache{
		client: client,
		table:  table,
		now:    time.Now,
	}
}

// Get returns the snapshot unless it is missing or past its TTL.
// DynamoDB removes expired items lazily, so the TTL is checked on read.
func (c *DynamoCache) Get(ctx context.Context, restaurantID string) ([]byte, bool, error) {
	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(c.table),
		Key:            c.key(restaurantID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, wrapDynamo("getitem", restaurantID, err)
	}
	if out.Item == nil || isExpired(out.Item, c.now()) {
		return nil, false, nil
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, wrapDynamo("unmarshal", restaurantID, err)
	}
	return item.Payload, true, nil
}

// Set replaces the snapshot and stamps its expiry.
func (c *DynamoCache) Set(ctx context.Context, restaurantID string, payload []byte, ttl time.Duration) error {
	item, err := attributevalue.MarshalMap(snapshotItem{
		RestaurantID: restaurantID,
		Payload:      payload,
		TTL:          c.now().Add(ttl).Unix(),
	})
	if err != nil {
		return wrapDynamo("marshal", restaurantID, err)
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	return wrapDynamo("putitem", restaurantID, err)
}

func (c *DynamoCache) key(restaurantID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"restaurant_id": &types.AttributeValueMemberS{Value: restaurantID},
	}
}

// isExpired reports whether the item's TTL is at or before now.
// Items without a readable TTL never expire.
func isExpired(item map[string]types.AttributeValue, now time.Time) bool {
	ttlAttr, exists := item["ttl"]
	if !exists {
		return false
	}
	ttlNum, ok := ttlAttr.(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ttl, err := strconv.ParseInt(ttlNum.Value, 10, 64)
	if err != nil {
		return false
	}
	return ttl <= now.Unix()
}

func wrapDynamo(op, restaurantID string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: dynamodb %s weather %s: %w", store.ErrFailure, op, restaurantID, err)
}
