package source

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

// fakeDynamo serves pre-built scan pages per table, paging through
// ExclusiveStartKey {"page": N}.
type fakeDynamo struct {
	pages map[string][][]map[string]types.AttributeValue
	calls map[string]int
	err   error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		pages: map[string][][]map[string]types.AttributeValue{},
		calls: map[string]int{},
	}
}

func (f *fakeDynamo) add(t *testing.T, table string, pages ...[]map[string]interface{}) {
	t.Helper()
	for _, page := range pages {
		var items []map[string]types.AttributeValue
		for _, item := range page {
			av, err := attributevalue.MarshalMap(item)
			require.NoError(t, err)
			items = append(items, av)
		}
		f.pages[table] = append(f.pages[table], items)
	}
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	table := aws.ToString(in.TableName)
	f.calls[table]++

	page := 0
	if k, ok := in.ExclusiveStartKey["page"].(*types.AttributeValueMemberN); ok {
		page, _ = strconv.Atoi(k.Value)
	}
	pages := f.pages[table]
	if page >= len(pages) {
		return &dynamodb.ScanOutput{}, nil
	}
	out := &dynamodb.ScanOutput{Items: pages[page]}
	if page+1 < len(pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"page": &types.AttributeValueMemberN{Value: strconv.Itoa(page + 1)},
		}
	}
	return out, nil
}

type countingSink struct{ warns int }

func (s *countingSink) Debug(string, ...interface{}) {}
func (s *countingSink) Info(string, ...interface{})  {}
func (s *countingSink) Warn(string, ...interface{})  { s.warns++ }
func (s *countingSink) Error(string, ...interface{}) {}

func TestDynamoLoaderJoinsTables(t *testing.T) {
	fake := newFakeDynamo()
	fake.add(t, "Threads",
		[]map[string]interface{}{
			{"conversation_id": "c-1", "lead_name": "Ana", "busy": true},
		},
		[]map[string]interface{}{
			{"conversation_id": "c-2", "lead_name": "Ben"},
		},
	)
	fake.add(t, "Conversations",
		[]map[string]interface{}{
			{"conversation_id": "c-1", "response_id": "r-1", "timestamp": "2024-05-01T10:00:00Z", "ev_score": 72},
			{"conversation_id": "c-9", "response_id": "r-9", "timestamp": "2024-05-03T10:00:00Z"},
		},
		[]map[string]interface{}{
			{"conversation_id": "c-1", "response_id": "r-2", "timestamp": "2024-05-02T10:00:00Z"},
		},
	)
	sink := &countingSink{}

	l := NewDynamoLoader(fake, "Threads", "Conversations", sink)
	assert.Equal(t, "dynamodb:Threads", l.Name())

	items, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 2, fake.calls["Threads"])
	assert.Equal(t, 2, fake.calls["Conversations"])
	assert.Equal(t, 1, sink.warns, "c-9 has no thread")

	convs := normalize.Assemble(items)
	require.Len(t, convs, 3)

	byID := map[string]int{}
	for i, c := range convs {
		byID[c.ID()] = i
	}
	c1 := convs[byID["c-1"]]
	assert.Equal(t, "Ana", c1.Thread.LeadName)
	assert.True(t, c1.Thread.Busy)
	assert.Len(t, c1.Messages, 2)
	assert.Equal(t, "2024-05-02T10:00:00Z", c1.Thread.LastMessageAt)
	require.NotNil(t, c1.Thread.AIScore)
	assert.Equal(t, 72.0, *c1.Thread.AIScore)

	assert.Empty(t, convs[byID["c-2"]].Messages)
	assert.Len(t, convs[byID["c-9"]].Messages, 1)
}

func TestDynamoLoaderNumericConversationIDs(t *testing.T) {
	fake := newFakeDynamo()
	fake.add(t, "Threads", []map[string]interface{}{
		{"conversation_id": 1001, "lead_name": "Ana"},
		{"conversation_id": 1002, "lead_name": "Ben"},
	})
	fake.add(t, "Conversations", []map[string]interface{}{
		{"conversation_id": 1001, "response_id": "r-1", "timestamp": "2024-05-01T10:00:00Z"},
		{"conversation_id": 1002, "response_id": "r-2", "timestamp": "2024-05-02T10:00:00Z"},
		{"conversation_id": "1002", "response_id": "r-3", "timestamp": "2024-05-03T10:00:00Z"},
	})
	sink := &countingSink{}

	items, err := NewDynamoLoader(fake, "Threads", "Conversations", sink).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "no orphan bucket")
	assert.Zero(t, sink.warns)

	convs := normalize.Assemble(items)
	require.Len(t, convs, 2)
	counts := map[string]int{}
	for _, c := range convs {
		counts[c.ID()] = len(c.Messages)
	}
	assert.Equal(t, map[string]int{"1001": 1, "1002": 2}, counts)
}

func TestDynamoLoaderThreadsOnly(t *testing.T) {
	fake := newFakeDynamo()
	fake.add(t, "Threads", []map[string]interface{}{
		{"conversation_id": "c-1", "messages": []interface{}{map[string]interface{}{"body": "hi"}}},
	})

	items, err := NewDynamoLoader(fake, "Threads", "", nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Zero(t, fake.calls["Conversations"])

	convs := normalize.Assemble(items)
	require.Len(t, convs, 1)
	assert.Equal(t, "hi", convs[0].Messages[0].Body)
}

func TestDynamoLoaderScanError(t *testing.T) {
	fake := newFakeDynamo()
	fake.err = errors.New("throttled")

	_, err := NewDynamoLoader(fake, "Threads", "Conversations", nil).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning Threads")
}
