package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/proprio/propertyhub/internal/domain/user"
	"github.com/proprio/propertyhub/internal/http/handlers"
)

func bindRouter() *gin.Engine {
	r := gin.New()

	r.POST("/bind", func(ctx *gin.Context) {
		var req user.RegisterRequest

		if !handlers.BindJSON(ctx, &req) {
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"email": req.Email})
	})

	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid_payload",
			body:           `{"email":"a@b.com","password":"longenough"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_required_fields",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "email is required; password is required",
		},
		{
			// no body at all still runs the required tags
			name:           "empty_body",
			body:           "",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "email is required; password is required",
		},
		{
			name:           "invalid_email",
			body:           `{"email":"not-an-email","password":"longenough"}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "email must be a valid email address",
		},
		{
			name:           "short_password",
			body:           `{"email":"a@b.com","password":"short"}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "password must be at least 8",
		},
		{
			name:           "malformed_json",
			body:           `{"email"}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid JSON body",
		},
		{
			name:           "type_mismatch",
			body:           `{"email":"a@b.com","password":12345678}`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "password must be of type string",
		},
	}

	r := bindRouter()

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/bind", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantError == "" {
				return
			}

			var out struct {
				Error string `json:"error"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if out.Error != tt.wantError {
				t.Fatalf("got error %q, want %q", out.Error, tt.wantError)
			}
		})
	}
}
