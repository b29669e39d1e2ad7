package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/storacha/resume-converter/pkg/types"
)

// ErrDynamoRecordNotFound is used when there is no record in a dynamo table
// (given that GetItem does not actually error)
var ErrDynamoRecordNotFound = errors.New("no record found in dynamo table")

// DynamoConversionTable implements the types.ConversionJournal interface on dynamodb
type DynamoConversionTable struct {
	tableName      string
	dynamoDbClient *dynamodb.Client
}

var _ types.ConversionJournal = (*DynamoConversionTable)(nil)

// NewDynamoConversionTable returns a ConversionJournal connected to a AWS DynamoDB table
func NewDynamoConversionTable(cfg aws.Config, tableName string) *DynamoConversionTable {
	return NewDynamoConversionTableWithClient(dynamodb.NewFromConfig(cfg), tableName)
}

// NewDynamoConversionTableWithClient returns a ConversionJournal using an existing client
func NewDynamoConversionTableWithClient(client *dynamodb.Client, tableName string) *DynamoConversionTable {
	return &DynamoConversionTable{
		tableName:      tableName,
		dynamoDbClient: client,
	}
}

// Put implements types.ConversionJournal.
func (d *DynamoConversionTable) Put(ctx context.Context, record types.ConversionRecord) error {
	item, err := attributevalue.MarshalMap(toConversionItem(record))
	if err != nil {
		return fmt.Errorf("serializing item: %w", err)
	}
	_, err = d.dynamoDbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName), Item: item,
	})
	if err != nil {
		return fmt.Errorf("storing item: %w", err)
	}
	return nil
}

// Get returns the journal entry for a conversion ID.
func (d *DynamoConversionTable) Get(ctx context.Context, id string) (types.ConversionRecord, error) {
	response, err := d.dynamoDbClient.GetItem(ctx, &dynamodb.GetItemInput{
		Key:       conversionItem{ID: id}.GetKey(),
		TableName: aws.String(d.tableName),
	})
	if err != nil {
		return types.ConversionRecord{}, fmt.Errorf("retrieving item: %w", err)
	}
	if response.Item == nil {
		return types.ConversionRecord{}, errors.Join(types.ErrKeyNotFound, ErrDynamoRecordNotFound)
	}
	var item conversionItem
	err = attributevalue.UnmarshalMap(response.Item, &item)
	if err != nil {
		return types.ConversionRecord{}, fmt.Errorf("deserializing item: %w", err)
	}
	return item.toRecord()
}

type conversionItem struct {
	ID             string `dynamodbav:"id"`
	FileToConvert  string `dynamodbav:"fileToConvert"`
	SourceKey      string `dynamodbav:"sourceKey"`
	DestinationKey string `dynamodbav:"destinationKey"`
	Status         string `dynamodbav:"status"`
	StatusCode     int    `dynamodbav:"statusCode"`
	URL            string `dynamodbav:"url,omitempty"`
	ConvertedAt    string `dynamodbav:"convertedAt"`
}

func toConversionItem(r types.ConversionRecord) conversionItem {
	return conversionItem{
		ID:             r.ID,
		FileToConvert:  r.FileToConvert,
		SourceKey:      r.SourceKey,
		DestinationKey: r.DestinationKey,
		Status:         string(r.Status),
		StatusCode:     r.StatusCode,
		URL:            r.URL,
		ConvertedAt:    r.ConvertedAt.Format(time.RFC3339Nano),
	}
}

func (c conversionItem) toRecord() (types.ConversionRecord, error) {
	convertedAt, err := time.Parse(time.RFC3339Nano, c.ConvertedAt)
	if err != nil {
		return types.ConversionRecord{}, fmt.Errorf("parsing convertedAt: %w", err)
	}
	return types.ConversionRecord{
		ID:             c.ID,
		FileToConvert:  c.FileToConvert,
		SourceKey:      c.SourceKey,
		DestinationKey: c.DestinationKey,
		Status:         types.ConversionStatus(c.Status),
		StatusCode:     c.StatusCode,
		URL:            c.URL,
		ConvertedAt:    convertedAt,
	}, nil
}

// GetKey returns the primary key of the conversion in a format that can be
// sent to DynamoDB.
func (c conversionItem) GetKey() map[string]dynamotypes.AttributeValue {
	return map[string]dynamotypes.AttributeValue{"id": &dynamotypes.AttributeValueMemberS{Value: c.ID}}
}
