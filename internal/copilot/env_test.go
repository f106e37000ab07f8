package copilot

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceName(t *testing.T) {
	t.Setenv("COPILOT_APPLICATION_NAME", "movies")
	t.Setenv("COPILOT_ENVIRONMENT_NAME", "test")
	t.Setenv("COPILOT_SERVICE_NAME", "reviews")

	assert.Equal(t, "movies-test-reviews", ServiceName("fallback"))
	assert.Equal(t, "http://reviews.test.movies.local:8080/movies/reviews", ServiceURL("reviews", 8080, "/movies/reviews"))
}

func TestServiceName_OutsideCopilot(t *testing.T) {
	t.Setenv("COPILOT_APPLICATION_NAME", "movies")
	t.Setenv("COPILOT_SERVICE_NAME", "")
	os.Unsetenv("COPILOT_SERVICE_NAME")

	assert.Equal(t, "reviews", ServiceName("reviews"))
}
