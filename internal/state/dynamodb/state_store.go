// Package dynamodb stores ingestion markers in a DynamoDB table keyed by
// data_source (partition, S) and target_bucket (sort, S). The table must be
// created with that composite key; a table keyed on data_source alone rejects
// every request with a key schema validation error.
package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/JakeFAU/economic-index-etl/internal/ingest"
)

// DefaultTable is the table used when none is configured. It is not the
// single-key etl_execution_reference table.
const DefaultTable = "etl_execution_state"

// ExecutionLayout renders last_execution values.
const ExecutionLayout = "2006-01-02 15:04:05"

const (
	attrSource    = "data_source"
	attrTarget    = "target_bucket"
	attrPeriod    = "reference_period"
	attrExecution = "last_execution"
)

// Config selects the table and optional endpoint override.
type Config struct {
	Table    string `mapstructure:"table"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// API is the subset of the DynamoDB client used by StateStore.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// StateStore reads and writes ingestion markers.
type StateStore struct {
	client API
	table  string
}

// New builds a DynamoDB client from awsCfg.
func New(awsCfg aws.Config, cfg Config) *StateStore {
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.Region != "" {
			o.Region = cfg.Region
		}
	})
	store, _ := NewWithClient(client, cfg.Table)
	return store
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(client API, table string) (*StateStore, error) {
	if client == nil {
		return nil, fmt.Errorf("dynamodb client is required")
	}
	if table == "" {
		table = DefaultTable
	}
	return &StateStore{client: client, table: table}, nil
}

// Get reads the marker with a consistent read.
func (s *StateStore) Get(ctx context.Context, seriesID, target string) (ingest.IngestionState, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            itemKey(seriesID, target),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return ingest.IngestionState{}, false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return ingest.IngestionState{}, false, nil
	}

	state := ingest.IngestionState{
		SeriesID:            seriesID,
		TargetDestination:   target,
		LastReferencePeriod: stringAttr(out.Item, attrPeriod),
	}
	if raw := stringAttr(out.Item, attrExecution); raw != "" {
		executed, err := time.ParseInLocation(ExecutionLayout, raw, time.UTC)
		if err != nil {
			return ingest.IngestionState{}, false, fmt.Errorf("parse %s %q: %w", attrExecution, raw, err)
		}
		state.LastExecutionTime = executed
	}
	return state, true, nil
}

// Put overwrites the marker.
func (s *StateStore) Put(ctx context.Context, state ingest.IngestionState) error {
	if state.SeriesID == "" || state.TargetDestination == "" {
		return fmt.Errorf("series id and target are required")
	}
	item := itemKey(state.SeriesID, state.TargetDestination)
	item[attrPeriod] = &types.AttributeValueMemberS{Value: state.LastReferencePeriod}
	item[attrExecution] = &types.AttributeValueMemberS{Value: state.LastExecutionTime.UTC().Format(ExecutionLayout)}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func itemKey(seriesID, target string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrSource: &types.AttributeValueMemberS{Value: seriesID},
		attrTarget: &types.AttributeValueMemberS{Value: target},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
