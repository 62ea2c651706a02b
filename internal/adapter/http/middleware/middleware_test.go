package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"userapp/internal/adapter/http/helper"
	"userapp/internal/core/model/response"
	ct "userapp/pkg/context"
)

func TestCurrentMiddleware(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CurrentMiddleware())

	var fromContext string
	router.GET("/x", func(c *gin.Context) {
		fromContext = ct.GetCurrent(c.Request.Context()).RequestID()
		c.String(http.StatusOK, GetCurrent(c).RequestID())
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)

	Expect(w.Body.String()).To(Equal("abc-123"))
	Expect(w.Header().Get(RequestIDHeader)).To(Equal("abc-123"))
	Expect(fromContext).To(Equal("abc-123"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/x", nil)
	router.ServeHTTP(w, req)

	Expect(w.Header().Get(RequestIDHeader)).To(HaveLen(36))
}

func TestRecovery(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	for _, display := range []bool{true, false} {
		router := gin.New()
		router.Use(Recovery(helper.NewResponder(helper.ErrorOptions{DisplayErrorDetails: display}, nil)))
		router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/boom", nil)
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))

		var body response.ErrorResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Errors.Code).To(Equal("internal"))

		if display {
			Expect(body.Errors.Details).NotTo(BeNil())
			Expect(w.Body.String()).To(ContainSubstring("kaboom"))
		} else {
			Expect(body.Errors.Details).To(BeNil())
			Expect(w.Body.String()).NotTo(ContainSubstring("kaboom"))
		}
	}
}
