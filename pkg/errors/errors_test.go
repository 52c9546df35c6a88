package errors_test

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/vocab/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "file",
			ID:       "legacy.json",
		}
		assert.Equal(t, "file legacy.json not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("record", "a1")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "difficulty",
			Message: "must be between 1 and 5",
		}
		assert.Equal(t, "validation failed for field difficulty: must be between 1 and 5", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "collection has no items"}
		assert.Equal(t, "validation failed: collection has no items", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewValidationError("frequency", 250, "exceeds maximum")
		assert.Equal(t, "frequency", err.Field)
		assert.Equal(t, 250, err.Value)
	})
}

func TestConfigError(t *testing.T) {
	cause := errors.New("yaml: line 3")
	err := pkgerrors.NewConfigError("categories", "cannot parse overrides", cause)

	assert.Equal(t, "configuration error in categories: cannot parse overrides", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, pkgerrors.IsConfigError(err))

	bare := &pkgerrors.ConfigError{Message: "missing"}
	assert.Equal(t, "configuration error: missing", bare.Error())
}

func TestMergeError(t *testing.T) {
	err := pkgerrors.NewMergeError("group-0001", []string{"a1", "a2"}, "no member has both terms", nil)
	assert.Equal(t, "merge of group group-0001 failed for members [a1 a2]: no member has both terms", err.Error())

	noMembers := pkgerrors.NewMergeError("group-0002", nil, "empty group", nil)
	assert.Equal(t, "merge of group group-0002 failed: empty group", noMembers.Error())
}

func TestStageError(t *testing.T) {
	err := pkgerrors.WrapStage("unify", pkgerrors.ErrEmptyInput)
	require.Error(t, err)
	assert.Equal(t, "stage unify: no vocabulary data loaded", err.Error())
	assert.True(t, pkgerrors.IsEmptyInput(err))

	var stageErr *pkgerrors.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "unify", stageErr.Stage)
}

func TestParseAndIOError(t *testing.T) {
	cause := errors.New("permission denied")

	ioErr := pkgerrors.NewIOError("read", "/tmp/vocabulary.json", cause)
	assert.Equal(t, "IO error during read of /tmp/vocabulary.json: permission denied", ioErr.Error())
	assert.ErrorIs(t, ioErr, cause)

	parseErr := pkgerrors.NewParseError("yaml", "", "bad indent", nil)
	assert.Equal(t, "yaml parse error: bad indent", parseErr.Error())
}

func TestWrapHelpersReturnNilForNil(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapCanceled("merge", nil))
	assert.NoError(t, pkgerrors.WrapIO("write", "out.json", nil))
	assert.NoError(t, pkgerrors.WrapParse("json", "in.json", nil))
	assert.NoError(t, pkgerrors.WrapStage("merge", nil))
}

func TestIsCanceled(t *testing.T) {
	err := pkgerrors.WrapStage("dedupe", pkgerrors.ErrCanceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.False(t, pkgerrors.IsEmptyInput(err))
}

func TestWrapCanceled(t *testing.T) {
	err := pkgerrors.WrapCanceled("merge", context.DeadlineExceeded)

	assert.ErrorIs(t, err, pkgerrors.ErrCanceled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "stage merge: operation canceled: context deadline exceeded", err.Error())
}
