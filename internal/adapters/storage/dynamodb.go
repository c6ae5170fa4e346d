package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"demographics-api/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"
)

// tableCreateTimeout bounds how long CreateTable waits for the table to become active
const tableCreateTimeout = 2 * time.Minute

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoTable
type DynamoDBAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoTable implements Table on an AWS DynamoDB table
type DynamoTable struct {
	client DynamoDBAPI
	table  string
	logger *logrus.Logger
}

// NewDynamoClient builds a DynamoDB client from the table configuration. Static
// credentials and a custom endpoint are optional.
func NewDynamoClient(ctx context.Context, config *Config) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}
	if config.AccessKeyID != "" && config.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	}), nil
}

// NewDynamoTable creates a DynamoTable for the named table
func NewDynamoTable(client DynamoDBAPI, tableName string, logger *logrus.Logger) *DynamoTable {
	if logger == nil {
		logger = logrus.New()
	}
	return &DynamoTable{
		client: client,
		table:  tableName,
		logger: logger,
	}
}

// Scan implements Table.Scan
func (d *DynamoTable) Scan(ctx context.Context) ([]Item, error) {
	items := make([]Item, 0)

	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapDynamoError("Scan", "", err)
		}

		decoded, err := decodeItems(page.Items)
		if err != nil {
			return nil, NewTableError("Scan", "", err, false)
		}
		items = append(items, decoded...)
	}

	return items, nil
}

// Query implements Table.Query
func (d *DynamoTable) Query(ctx context.Context, zipCode int64) ([]Item, error) {
	items := make([]Item, 0)

	paginator := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:                aws.String(d.table),
		KeyConditionExpression:   aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{"#pk": models.AttrZipCode},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": numberValue(zipCode),
		},
		ScanIndexForward: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapDynamoError("Query", strconv.FormatInt(zipCode, 10), err)
		}

		decoded, err := decodeItems(page.Items)
		if err != nil {
			return nil, NewTableError("Query", strconv.FormatInt(zipCode, 10), err, false)
		}
		items = append(items, decoded...)
	}

	return items, nil
}

// Insert implements Table.Insert
func (d *DynamoTable) Insert(ctx context.Context, item Item) error {
	key, ok := item.Key()
	if !ok {
		return NewTableError("Insert", "", ErrInvalidItem, false)
	}

	av, err := attributevalue.MarshalMap(map[string]interface{}(item))
	if err != nil {
		return NewTableError("Insert", formatKey(key), fmt.Errorf("%w: %v", ErrInvalidItem, err), false)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#pk) AND attribute_not_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": models.AttrZipCode,
			"#sk": models.AttrNumParticipants,
		},
	})
	if err != nil {
		return mapDynamoError("Insert", formatKey(key), err)
	}

	return nil
}

// Upsert implements Table.Upsert
func (d *DynamoTable) Upsert(ctx context.Context, key models.Key, item Item) (Item, error) {
	input := &dynamodb.UpdateItemInput{
		TableName:    aws.String(d.table),
		Key:          keyValue(key),
		ReturnValues: types.ReturnValueUpdatedOld,
	}

	expr, names, values, err := buildUpdateExpression(item.Attributes())
	if err != nil {
		return nil, NewTableError("Upsert", formatKey(key), fmt.Errorf("%w: %v", ErrInvalidItem, err), false)
	}
	if expr != "" {
		input.UpdateExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	out, err := d.client.UpdateItem(ctx, input)
	if err != nil {
		return nil, mapDynamoError("Upsert", formatKey(key), err)
	}

	previous := Item{}
	if len(out.Attributes) > 0 {
		if err := attributevalue.UnmarshalMap(out.Attributes, &previous); err != nil {
			return nil, NewTableError("Upsert", formatKey(key), err, false)
		}
	}
	return previous, nil
}

// DeleteByPartition implements Table.DeleteByPartition. DynamoDB deletes by full key
// only, so the partition is queried first and each item deleted in order.
func (d *DynamoTable) DeleteByPartition(ctx context.Context, zipCode int64) error {
	items, err := d.Query(ctx, zipCode)
	if err != nil {
		return err
	}

	for _, item := range items {
		key, ok := item.Key()
		if !ok {
			continue
		}

		_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(d.table),
			Key:       keyValue(key),
		})
		if err != nil {
			return mapDynamoError("DeleteByPartition", formatKey(key), err)
		}
	}

	d.logger.WithFields(logrus.Fields{
		"zip_code": zipCode,
		"deleted":  len(items),
	}).Debug("Deleted partition")
	return nil
}

// CreateTable implements Table.CreateTable and waits for the table to become active
func (d *DynamoTable) CreateTable(ctx context.Context, schema *TableSchema) error {
	if schema == nil {
		return NewTableError("CreateTable", "", ErrInvalidItem, false)
	}

	name := schema.Name
	if name == "" {
		name = d.table
	}

	_, err := d.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(schema.PartitionKey.Name), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(schema.SortKey.Name), KeyType: types.KeyTypeRange},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(schema.PartitionKey.Name), AttributeType: types.ScalarAttributeType(schema.PartitionKey.Type)},
			{AttributeName: aws.String(schema.SortKey.Name), AttributeType: types.ScalarAttributeType(schema.SortKey.Type)},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(schema.ReadCapacity),
			WriteCapacityUnits: aws.Int64(schema.WriteCapacity),
		},
	})
	if err != nil {
		return mapDynamoError("CreateTable", name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)}, tableCreateTimeout); err != nil {
		return NewTableError("CreateTable", name, fmt.Errorf("%w: %v", ErrUnavailable, err), true)
	}

	d.logger.WithField("table", name).Info("Created DynamoDB table")
	return nil
}

// Close implements Table.Close
func (d *DynamoTable) Close() error {
	return nil
}

func numberValue(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

func keyValue(key models.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrZipCode:         numberValue(key.ZipCode),
		models.AttrNumParticipants: numberValue(key.NumParticipants),
	}
}

func decodeItems(raw []map[string]types.AttributeValue) ([]Item, error) {
	var decoded []map[string]interface{}
	if err := attributevalue.UnmarshalListOfMaps(raw, &decoded); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(decoded))
	for _, m := range decoded {
		items = append(items, Item(m).NormalizeKeys())
	}
	return items, nil
}

// buildUpdateExpression renders a SET expression for attrs with placeholder names
// and values. Attribute order is sorted so the expression is deterministic.
func buildUpdateExpression(attrs map[string]interface{}) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(attrs) == 0 {
		return "", nil, nil, nil
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	exprNames := make(map[string]string, len(names))
	exprValues := make(map[string]types.AttributeValue, len(names))
	expr := "SET "
	for i, name := range names {
		av, err := attributevalue.Marshal(attrs[name])
		if err != nil {
			return "", nil, nil, fmt.Errorf("attribute %s: %w", name, err)
		}

		namePlaceholder := fmt.Sprintf("#a%d", i)
		valuePlaceholder := fmt.Sprintf(":v%d", i)
		exprNames[namePlaceholder] = name
		exprValues[valuePlaceholder] = av

		if i > 0 {
			expr += ", "
		}
		expr += namePlaceholder + " = " + valuePlaceholder
	}

	return expr, exprNames, exprValues, nil
}

// mapDynamoError translates DynamoDB API errors into TableError values
func mapDynamoError(op, key string, err error) error {
	tableErr := NewTableError(op, key, err, false)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		tableErr.Code = apiErr.ErrorCode()
	}

	var (
		conditionFailed *types.ConditionalCheckFailedException
		notFound        *types.ResourceNotFoundException
		inUse           *types.ResourceInUseException
		throughput      *types.ProvisionedThroughputExceededException
		limitExceeded   *types.RequestLimitExceeded
		internal        *types.InternalServerError
	)

	switch {
	case errors.As(err, &conditionFailed):
		tableErr.Err = fmt.Errorf("%w: %v", ErrItemExists, err)
	case errors.As(err, &notFound):
		tableErr.Err = fmt.Errorf("%w: %v", ErrTableNotFound, err)
	case errors.As(err, &inUse):
		tableErr.Err = fmt.Errorf("%w: %v", ErrTableExists, err)
	case errors.As(err, &throughput), errors.As(err, &limitExceeded):
		tableErr.Err = fmt.Errorf("%w: %v", ErrThroughputExceeded, err)
		tableErr.Retryable = true
	case errors.As(err, &internal):
		tableErr.Err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		tableErr.Retryable = true
	}

	return tableErr
}
