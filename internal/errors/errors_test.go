package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/errors"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeAlreadyExists, http.StatusConflict},
		{errors.CodeConflict, http.StatusConflict},
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodePersistence, http.StatusServiceUnavailable},
		{errors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := errors.NotFoundf("category %q", "Joy")

	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.NotErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, `category "Joy"`, err.Error())
}

func TestPersistence_KeepsCause(t *testing.T) {
	cause := stderrors.New("database is locked")

	err := errors.Persistence("delete highlights", cause)

	assert.ErrorIs(t, err, errors.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "delete highlights: database is locked", err.Error())
}

func TestWithDetails_DoesNotMutate(t *testing.T) {
	base := errors.Persistence("deleted 1 of 3 highlights", stderrors.New("timeout"))

	withDetails := base.WithDetails(map[string]int{"deleted": 1})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]int{"deleted": 1}, withDetails.Details)
	assert.ErrorIs(t, withDetails, errors.ErrPersistence)
	assert.Equal(t, base.Error(), withDetails.Error())
}

func TestAs_ThroughJoin(t *testing.T) {
	err := errors.Join(stderrors.New("first"), errors.Conflict("a category deletion is already in progress"))

	var domainErr *errors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, errors.CodeConflict, domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus())
}
