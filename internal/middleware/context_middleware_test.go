package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fitzone-app/backend/config"
	"github.com/fitzone-app/backend/internal/khalti"
)

func TestKhaltiMiddlewareInjection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	client := khalti.NewClient("test-secret", "")
	cfg := &config.KhaltiConfig{
		SiteURL:   "https://fitzone.example",
		ReturnURL: "https://fitzone.example/dashboard/payment-confirmation",
	}

	var gotClient *khalti.Client
	var gotCfg *config.KhaltiConfig

	r := gin.New()
	r.Use(KhaltiMiddleware(client, cfg))
	r.GET("/", func(c *gin.Context) {
		gotClient = GetKhaltiClient(c)
		gotCfg = GetKhaltiConfig(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if gotClient != client {
		t.Error("handler did not receive the injected gateway client")
	}
	if gotCfg == nil || gotCfg.SiteURL != cfg.SiteURL || gotCfg.ReturnURL != cfg.ReturnURL {
		t.Errorf("handler received config %+v", gotCfg)
	}
}

func TestContextGettersWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetKhaltiClient(c) != nil {
		t.Error("expected nil client without middleware")
	}
	if GetKhaltiConfig(c) != nil {
		t.Error("expected nil config without middleware")
	}
	if GetLogger(c) == nil {
		t.Error("logger getter must fall back to a no-op logger")
	}
	if GetOTPStore(c) != nil {
		t.Error("expected nil otp store without middleware")
	}
	if GetPublisher(c) != nil {
		t.Error("expected nil publisher without middleware")
	}
}
