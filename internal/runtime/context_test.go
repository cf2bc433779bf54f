package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New("", "")
	assert.Equal(t, "dev", c.Version)
	assert.Equal(t, "unknown", c.BuildDate)
	assert.NotEmpty(t, c.InstanceID)
	assert.Equal(t, "zoneheat@dev", c.Release())
	assert.Equal(t, "zoneheat/dev", c.UserAgent())

	assert.NotEqual(t, c.InstanceID, New("", "").InstanceID)
}

func TestValidationResult(t *testing.T) {
	t.Parallel()

	r := NewValidationResult()
	assert.True(t, r.Valid)
	assert.False(t, r.HasIssues())

	r.AddWarning("no admin token")
	assert.True(t, r.Valid)
	assert.True(t, r.HasIssues())

	r.AddError("bad dsn")
	assert.False(t, r.Valid)
	assert.Equal(t, []string{"bad dsn"}, r.Errors)
}
