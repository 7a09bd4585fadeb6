package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"toolmart/internal/adapter/api"
)

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	healthHandler := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}

	if assert.NoError(t, healthHandler(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}

func TestValidatorRejectsMissingFields(t *testing.T) {
	v := api.NewValidator()

	type offerBody struct {
		ListingID string  `validate:"required"`
		Amount    float64 `validate:"required,gt=0"`
	}

	assert.Error(t, v.Validate(&offerBody{}))
	assert.Error(t, v.Validate(&offerBody{ListingID: "l1", Amount: -3}))
	assert.NoError(t, v.Validate(&offerBody{ListingID: "l1", Amount: 25}))
}
