package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag serializes the payload with a strong validator and
// answers 304 when the client already holds the current representation.
// Payloads that fail to marshal fall back to a plain JSON response.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	tag, err := payloadETag(payload)

	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", tag)

	if clientHoldsETag(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

// sha256 over the JSON encoding; any field change produces a new tag
func payloadETag(payload interface{}) (string, error) {
	encoded, err := json.Marshal(payload)

	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(encoded)

	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

func clientHoldsETag(ifNoneMatch, current string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)

	if ifNoneMatch == "" || current == "" {
		return false
	}

	if ifNoneMatch == "*" {
		return true
	}

	want := trimETag(current)

	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		if trimETag(candidate) == want {
			return true
		}
	}

	return false
}

// weak validators (W/"...") compare equal to their strong form here
func trimETag(raw string) string {
	v := strings.TrimSpace(raw)

	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}
