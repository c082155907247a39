package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewResultIsFailed(t *testing.T) {
	r := NewResult()

	assert.Equal(t, StatusFailed, r.Status())
	assert.Nil(t, r.Principal())
	assert.Empty(t, r.Messages())
}

func TestResultTransitions(t *testing.T) {
	r := NewResult()

	r.Success(NewPrincipal("alice"))
	assert.Equal(t, StatusSuccess, r.Status())
	assert.Equal(t, "alice", r.Principal().Name())

	r.InvalidCredentials()
	assert.Equal(t, StatusInvalidCredentials, r.Status())
	assert.Nil(t, r.Principal(), "non-success outcomes carry no principal")

	r.Fail("store unavailable")
	assert.Equal(t, StatusFailed, r.Status())
	assert.Equal(t, []string{"store unavailable"}, r.Messages())
}

func TestResultMessagesAreOrdered(t *testing.T) {
	r := NewResult()
	r.AddMessage("first")
	r.AddMessage("second")

	assert.Equal(t, []string{"first", "second"}, r.Messages())
}

func TestResultCopyIsIndependent(t *testing.T) {
	r := NewResult()
	r.Success(NewPrincipal("alice"))
	r.AddMessage("original")

	c := r.Copy()
	c.AddMessage("copied")
	c.InvalidCredentials()

	assert.Equal(t, StatusSuccess, r.Status())
	assert.Equal(t, []string{"original"}, r.Messages())
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "SUCCESS"},
		{StatusInvalidCredentials, "INVALID_CREDENTIALS"},
		{StatusContinue, "CONTINUE"},
		{StatusFailed, "FAILED"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}
