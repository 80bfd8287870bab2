package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/developia-II/catalog-api/utils"
)

var strict = bluemonday.StrictPolicy()

const maxCleanPasses = 4

// Clean strips markup from user supplied text and trims surrounding space.
// The result is plain text: entities are decoded, so "a < b & c" is kept
// as typed. Markup that was sent pre-escaped is stripped on a later pass.
func Clean(s string) string {
	text := s
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(text))
		if next == text {
			return strings.TrimSpace(text)
		}
		text = next
	}
	// Still changing after several passes: keep the escaped form.
	return strings.TrimSpace(strict.Sanitize(text))
}

// CleanPtr applies Clean to an optional string.
func CleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := Clean(*s)
	return &cleaned
}

// TrimAll trims every element of ss.
func TrimAll(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// ObjectID parses a path identifier.
func ObjectID(raw, entity string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, utils.BadRequest("Invalid " + entity + " id: " + raw)
	}
	return id, nil
}
