package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	require.NotNil(t, v)
}

func TestFormatValidationError(t *testing.T) {
	type receipt struct {
		LotNumber string `json:"lot_number" binding:"required"`
		Unit      string `json:"unit" binding:"required,unitcode"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)

	var message string
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req receipt
		if err := c.ShouldBindJSON(&req); err != nil {
			message = FormatValidationError(err)
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("reports missing and invalid fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test",
			bytes.NewReader([]byte(`{"unit":"BOGUS"}`)))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, message, "lot_number: is required")
		assert.Contains(t, message, "unit: is not a known unit code")
	})

	t.Run("accepts known unit codes case-insensitively", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test",
			bytes.NewReader([]byte(`{"lot_number":"LOT-1","unit":"kg"}`)))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("passes non-validator errors through", func(t *testing.T) {
		assert.Equal(t, assert.AnError.Error(), FormatValidationError(assert.AnError))
	})
}
