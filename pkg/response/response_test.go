package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	fn(c)
	// Flush the buffered status like gin's engine does after the handler
	// chain; without it a body-less response never reaches the recorder.
	c.Writer.WriteHeaderNow()
	return w
}

func TestOK_PayloadStaysBare(t *testing.T) {
	w := record(func(c *gin.Context) {
		OK(c, map[string]string{"status": "ok"})
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected bare payload, got %v", body)
	}
	if _, enveloped := body["code"]; enveloped {
		t.Error("success payload must not carry an error envelope")
	}
}

func TestNoContent_EmptyBody(t *testing.T) {
	w := record(NoContent)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestValidationError_EnvelopeShape(t *testing.T) {
	w := record(func(c *gin.Context) {
		ValidationError(c, []FieldError{
			{Field: "username", Message: "username is required"},
		})
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, body.Code)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "username" {
		t.Errorf("unexpected fields: %+v", body.Fields)
	}
}

func TestErrorWithHint_CarriesHint(t *testing.T) {
	w := record(func(c *gin.Context) {
		UpstreamFailed(c, "could not fetch students", "ensure the sheet is shared with the service account as Editor")
	})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.Code != CodeUpstreamSheets {
		t.Errorf("expected code %s, got %s", CodeUpstreamSheets, body.Code)
	}
	if body.Hint == "" {
		t.Error("expected remediation hint in envelope")
	}
}

func TestError_OmitsEmptyOptionalFields(t *testing.T) {
	w := record(func(c *gin.Context) {
		NotFound(c, "group not found")
	})

	raw := w.Body.String()
	var keys map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if _, ok := keys["fields"]; ok {
		t.Errorf("fields should be omitted when empty: %s", raw)
	}
	if _, ok := keys["hint"]; ok {
		t.Errorf("hint should be omitted when empty: %s", raw)
	}
}
