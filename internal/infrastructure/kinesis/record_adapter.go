// Package kinesis turns DynamoDB stream records, delivered through the
// DynamoDB Kinesis integration, back into document store changes for the
// lambda consumers.
package kinesis

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/homemade-market/internal/infrastructure/store"
)

// ConvertFromKinesisRecord decodes one Kinesis record carrying a DynamoDB
// stream record into a store.Change. Records that are not document writes
// return (nil, nil).
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*store.Change, error) {
	var streamRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &streamRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}
	return ConvertFromDynamoDBStreamRecord(streamRecord)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB stream record to a
// store.Change. Used directly in tests and when consuming streams without
// the Kinesis hop.
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*store.Change, error) {
	switch record.EventName {
	case "INSERT", "MODIFY":
		doc, err := imageToDocument(record.Change.NewImage)
		if err != nil {
			return nil, err
		}
		collection, id := popKeys(doc)
		if collection == "" || id == "" {
			return nil, fmt.Errorf("stream record is missing document keys")
		}
		return &store.Change{
			Collection: collection,
			ID:         id,
			Kind:       store.ChangeSet,
			Doc:        doc,
			Timestamp:  record.Change.ApproximateCreationDateTime.Time,
		}, nil
	case "REMOVE":
		doc, err := imageToDocument(record.Change.Keys)
		if err != nil {
			return nil, err
		}
		collection, id := popKeys(doc)
		if collection == "" || id == "" {
			return nil, fmt.Errorf("stream record is missing document keys")
		}
		return &store.Change{
			Collection: collection,
			ID:         id,
			Kind:       store.ChangeDelete,
			Timestamp:  record.Change.ApproximateCreationDateTime.Time,
		}, nil
	default:
		return nil, nil
	}
}

// popKeys pulls the table key attributes out of the decoded image. The id
// attribute doubles as a document field, so only collection is removed.
func popKeys(doc store.Document) (collection, id string) {
	collection = doc.String("collection")
	id = doc.String("id")
	delete(doc, "collection")
	return collection, id
}

func imageToDocument(image map[string]events.DynamoDBAttributeValue) (store.Document, error) {
	if image == nil {
		return nil, fmt.Errorf("DynamoDB image is nil")
	}

	doc := make(store.Document, len(image))
	for field, av := range image {
		v, err := attributeToValue(av)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}
		doc[field] = v
	}
	return doc, nil
}

func attributeToValue(av events.DynamoDBAttributeValue) (any, error) {
	switch av.DataType() {
	case events.DataTypeString:
		return av.String(), nil
	case events.DataTypeNumber:
		n, err := strconv.ParseFloat(av.Number(), 64)
		if err != nil {
			return nil, err
		}
		return n, nil
	case events.DataTypeBoolean:
		return av.Boolean(), nil
	case events.DataTypeNull:
		return nil, nil
	case events.DataTypeMap:
		m := make(map[string]any, len(av.Map()))
		for k, nested := range av.Map() {
			v, err := attributeToValue(nested)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	case events.DataTypeList:
		list := make([]any, 0, len(av.List()))
		for _, nested := range av.List() {
			v, err := attributeToValue(nested)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %v", av.DataType())
	}
}
