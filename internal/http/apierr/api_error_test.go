package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/http/apierr"
	"github.com/tuanvumaihuynh/digital-store/pkg/validator"
)

func TestNew(t *testing.T) {
	t.Run("Should map a wrapped ZError with details", func(t *testing.T) {
		err := fmt.Errorf("create product: %w",
			apperr.ValidationErr.WithDetails("Product name is required."))

		res := apierr.New(err)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apierr.StatusError, res.Status)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		assert.Equal(t, []string{"Product name is required."}, res.Errors)
	})

	t.Run("Should map ZError statuses", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, apierr.New(apperr.ProductNotFound).StatusCode)
		assert.Equal(t, http.StatusForbidden, apierr.New(apperr.Forbidden).StatusCode)
		assert.Equal(t, http.StatusConflict, apierr.New(apperr.CategoryInUse).StatusCode)
		assert.Equal(t, http.StatusMethodNotAllowed, apierr.New(apperr.MethodNotAllowed).StatusCode)
		assert.Equal(t, http.StatusInternalServerError, apierr.New(apperr.FileCleanupFailed).StatusCode)
	})

	t.Run("Should map validator errors", func(t *testing.T) {
		v, err := validator.NewDefaultValidator()
		require.NoError(t, err)

		verr := v.Validate(struct {
			Email string `json:"email" validate:"required,email"`
		}{Email: "nope"})
		require.Error(t, verr)

		res := apierr.New(verr)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, []string{"email must be a valid email address."}, res.Errors)
	})

	t.Run("Should hide unknown errors", func(t *testing.T) {
		res := apierr.New(errors.New("pq: connection refused"))
		assert.Equal(t, apierr.InternalServerErr, res)
		assert.NotContains(t, res.Message, "connection refused")
	})
}
