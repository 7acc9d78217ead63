package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore keeps documents in a single DynamoDB table keyed by
// (collection, id), with document fields flattened into item attributes.
// Change delivery happens through the DynamoDB Kinesis integration, so no
// in-process publisher is attached here.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func (ds *DynamoStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	out, err := ds.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(ds.tableName),
		Key:       itemKey(collection, id),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document: %w", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	return itemToDocument(out.Item)
}

func (ds *DynamoStore) Set(ctx context.Context, collection, id string, doc Document, merge bool) error {
	if merge {
		return ds.merge(ctx, collection, id, doc)
	}

	item, err := documentToItem(collection, id, doc)
	if err != nil {
		return err
	}
	_, err = ds.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ds.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// merge upserts only the supplied fields, leaving the rest of the item as
// is. A single UpdateItem creates the item when absent.
func (ds *DynamoStore) merge(ctx context.Context, collection, id string, doc Document) error {
	if len(doc) == 0 {
		return nil
	}

	names := make(map[string]string, len(doc))
	values := make(map[string]types.AttributeValue, len(doc))
	assignments := make([]string, 0, len(doc))

	i := 0
	for field, value := range doc {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal field %s: %w", field, err)
		}
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = field
		values[valueKey] = av
		assignments = append(assignments, nameKey+" = "+valueKey)
		i++
	}

	_, err := ds.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(ds.tableName),
		Key:                       itemKey(collection, id),
		UpdateExpression:          aws.String("SET " + strings.Join(assignments, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to merge document: %w", err)
	}
	return nil
}

func (ds *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := ds.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(ds.tableName),
		Key:       itemKey(collection, id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Increment uses an ADD expression, which treats a missing item or field
// as 0 and is atomic against concurrent writers.
func (ds *DynamoStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	_, err := ds.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(ds.tableName),
		Key:              itemKey(collection, id),
		UpdateExpression: aws.String("ADD #f :d"),
		ExpressionAttributeNames: map[string]string{
			"#f": field,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return nil
}

func (ds *DynamoStore) Query(ctx context.Context, q Query) ([]Document, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(ds.tableName),
		KeyConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#c": "collection",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: q.Collection},
		},
	}

	var filterParts []string
	for i, f := range q.Filters {
		av, err := attributevalue.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filter value: %w", err)
		}
		nameKey := fmt.Sprintf("#q%d", i)
		valueKey := fmt.Sprintf(":q%d", i)
		input.ExpressionAttributeNames[nameKey] = f.Field
		input.ExpressionAttributeValues[valueKey] = av
		filterParts = append(filterParts, nameKey+" = "+valueKey)
	}
	if len(filterParts) > 0 {
		input.FilterExpression = aws.String(strings.Join(filterParts, " AND "))
	}

	var docs []Document
	paginator := dynamodb.NewQueryPaginator(ds.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query documents: %w", err)
		}
		for _, item := range page.Items {
			doc, _, err := itemToDocument(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}

	// DynamoDB cannot order by arbitrary attributes, so sort client-side.
	if q.OrderBy != "" {
		sortDocs(docs, q.OrderBy, q.Descending)
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs, nil
}

// RunBatch maps onto TransactWriteItems, which is all-or-nothing up to the
// DynamoDB transaction item limit.
func (ds *DynamoStore) RunBatch(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return ErrEmptyBatch
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case ChangeSet:
			var doc Document
			if op.Merge {
				current, ok, err := ds.Get(ctx, op.Collection, op.ID)
				if err != nil {
					return err
				}
				if ok {
					merged := current.Clone()
					for k, v := range op.Doc {
						merged[k] = v
					}
					doc = merged
				} else {
					doc = op.Doc
				}
			} else {
				doc = op.Doc
			}
			item, err := documentToItem(op.Collection, op.ID, doc)
			if err != nil {
				return err
			}
			items = append(items, types.TransactWriteItem{
				Put: &types.Put{
					TableName: aws.String(ds.tableName),
					Item:      item,
				},
			})
		case ChangeDelete:
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(ds.tableName),
					Key:       itemKey(op.Collection, op.ID),
				},
			})
		default:
			return fmt.Errorf("unknown batch op kind %q", op.Kind)
		}
	}

	_, err := ds.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func itemKey(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func documentToItem(collection, id string, doc Document) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	// Key attributes share the item namespace with document fields.
	item["collection"] = &types.AttributeValueMemberS{Value: collection}
	item["id"] = &types.AttributeValueMemberS{Value: id}
	return item, nil
}

func itemToDocument(item map[string]types.AttributeValue) (Document, bool, error) {
	var doc Document
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	delete(doc, "collection")
	return doc, true, nil
}
