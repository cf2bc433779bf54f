package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGormAdapterTrace(t *testing.T) {
	buf := &bytes.Buffer{}
	adapter := NewGormLoggerAdapter(NewSlogLogger(buf, LogLevelTrace, nil), 50*time.Millisecond)
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	adapter.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Contains(t, buf.String(), `msg="sql query"`)

	buf.Reset()
	adapter.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), `msg="slow query"`)

	buf.Reset()
	adapter.Trace(context.Background(), time.Now(), sqlFn, errors.New("locked"))
	assert.Contains(t, buf.String(), `msg="query error"`)

	buf.Reset()
	adapter.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Contains(t, buf.String(), `msg="sql query"`)
}

func TestGormAdapterNilLoggerFallsBack(t *testing.T) {
	adapter := NewGormLoggerAdapter(nil, 0)
	assert.NotNil(t, adapter.logger)
	assert.Same(t, adapter, adapter.LogMode(0))
}
