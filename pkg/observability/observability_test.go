package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/config"
	"github.com/Alijeyrad/mindcare_backend/pkg/reqctx"
)

func TestFiberMiddleware_TraceHeaderMatchesContext(t *testing.T) {
	p, err := InitTelemetry(context.Background(), config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "mindcare_test",
	}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/crisis/:id", func(c fiber.Ctx) error {
		CrisesRaised.Add(c.Context(), 1)
		return c.SendString(reqctx.TraceIDFromContext(c.Context()))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/crisis/abc", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Len(t, string(body), 32)
	assert.Equal(t, string(body), resp.Header.Get(HeaderTraceID))
}

func TestFiberMiddleware_ContinuesIncomingTrace(t *testing.T) {
	p, err := InitTelemetry(context.Background(), config.ObservabilityConfig{ServiceName: "mindcare_test"}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	app := fiber.New()
	app.Use(FiberMiddleware())
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resp.Header.Get(HeaderTraceID))
}
