package source

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/pkg/logger"
)

// joinKey reads conversation_id as a string whether it was stored as S or N.
var joinKey = normalize.Field{"conversation_id", "conversationId"}

// DynamoLoader reads threads and messages from two DynamoDB tables and
// joins them on conversation_id.
type DynamoLoader struct {
	client        dynamodb.ScanAPIClient
	threadsTable  string
	messagesTable string
	log           logger.Sink
}

// NewDynamoLoader creates a DynamoLoader. With an empty messagesTable the
// thread items are returned as they are, for tables that embed messages.
func NewDynamoLoader(client dynamodb.ScanAPIClient, threadsTable, messagesTable string, log logger.Sink) *DynamoLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &DynamoLoader{
		client:        client,
		threadsTable:  threadsTable,
		messagesTable: messagesTable,
		log:           log,
	}
}

func (l *DynamoLoader) Name() string { return "dynamodb:" + l.threadsTable }

// Load scans both tables and emits one {thread, messages} item per thread.
// Messages whose conversation has no thread record are emitted as bare
// items so the assembler still sees them.
func (l *DynamoLoader) Load(ctx context.Context) ([]interface{}, error) {
	threads, err := l.scan(ctx, l.threadsTable)
	if err != nil {
		return nil, err
	}
	if l.messagesTable == "" {
		items := make([]interface{}, len(threads))
		for i, t := range threads {
			items[i] = t
		}
		return items, nil
	}

	messages, err := l.scan(ctx, l.messagesTable)
	if err != nil {
		return nil, err
	}

	byConversation := make(map[string][]interface{})
	for _, m := range messages {
		id := joinKey.String(normalize.Record(m))
		byConversation[id] = append(byConversation[id], m)
	}

	items := make([]interface{}, 0, len(threads))
	for _, t := range threads {
		id := joinKey.String(normalize.Record(t))
		msgs := byConversation[id]
		delete(byConversation, id)
		if msgs == nil {
			msgs = []interface{}{}
		}
		items = append(items, map[string]interface{}{"thread": t, "messages": msgs})
	}

	orphans := make([]string, 0, len(byConversation))
	for id := range byConversation {
		orphans = append(orphans, id)
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		l.log.Warn("messages without a thread record", "conversation_id", id, "count", len(byConversation[id]))
		items = append(items, map[string]interface{}{"conversation_id": id, "messages": byConversation[id]})
	}
	return items, nil
}

func (l *DynamoLoader) scan(ctx context.Context, table string) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	paginator := dynamodb.NewScanPaginator(l.client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		var batch []map[string]interface{}
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshaling %s items: %w", table, err)
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}
