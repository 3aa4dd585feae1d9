package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "unimarket/pkg/errors"
)

func record(t *testing.T, fn func(c echo.Context) error) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, fn(c))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestSuccessEnvelope(t *testing.T) {
	rec, resp := record(t, func(c echo.Context) error {
		return Success(c, map[string]string{"hello": "world"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestCreatedEnvelope(t *testing.T) {
	rec, resp := record(t, func(c echo.Context) error {
		return Created(c, map[string]string{"id": "abc"})
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	rec, resp := record(t, func(c echo.Context) error {
		return Error(c, apperrors.NotFound("Offer", nil))
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Offer not found", resp.Error.Message)
}

func TestErrorHidesUnknownErrors(t *testing.T) {
	rec, resp := record(t, func(c echo.Context) error {
		return Error(c, assert.AnError)
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, assert.AnError.Error())
}

func TestErrorFormatsValidationFailures(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	validationErr := validator.New().Struct(payload{Email: "not-an-email"})
	require.Error(t, validationErr)

	rec, resp := record(t, func(c echo.Context) error {
		return Error(c, validationErr)
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "email must be a valid email address", resp.Error.Message)
}

func TestPaginatedRoundsTotalPagesUp(t *testing.T) {
	rec, resp := record(t, func(c echo.Context) error {
		return Paginated(c, []string{"a", "b", "c"}, 25, 1, 10)
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var page PaginatedResponse
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}
