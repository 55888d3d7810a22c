package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/config"
	"github.com/anaypant/acs-next-js-dev-sub002/internal/normalize"
)

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"conversations":[
		{"thread":{"conversation_id":"c-1"},"messages":[{"id":"m-1","timestamp":"2024-05-01T10:00:00Z"}]},
		{"thread":{"conversation_id":"c-2","last_message_at":"2024-01-01T00:00:00Z"},"messages":[]}
	]}`), 0644))

	l := NewFileLoader(path)
	assert.Equal(t, "file:"+path, l.Name())

	items, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	convs := normalize.Assemble(items)
	require.Len(t, convs, 2)
	assert.Equal(t, "c-1", convs[0].ID())
}

func TestFileLoaderErrors(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{`), 0644))
	_, err = NewFileLoader(path).Load(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileLoader(path).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	l, err := New(context.Background(), config.SourceConfig{Type: config.SourceFile, File: "a.json"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &FileLoader{}, l)

	_, err = New(context.Background(), config.SourceConfig{Type: "ftp"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestNewS3UsesStaticCredentials(t *testing.T) {
	l, err := New(context.Background(), config.SourceConfig{
		Type: config.SourceS3,
		S3: config.S3Config{
			Bucket:    "exports",
			Key:       "leads.json",
			Region:    "us-east-1",
			AccessKey: "AKIDEXAMPLE",
			SecretKey: "secret",
			Endpoint:  "http://localhost:9000",
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/leads.json", l.Name())
}
