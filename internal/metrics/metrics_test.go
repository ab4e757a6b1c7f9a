package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(operations.WithLabelValues("create_group", "ok"))
	ObserveOperation("create_group", "ok")
	ObserveOperation("create_group", "ok")

	assert.Equal(t, before+2, testutil.ToFloat64(operations.WithLabelValues("create_group", "ok")))
}

func TestHandler(t *testing.T) {
	ObserveMailman("newlist", "200")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "groupmail_mailman_requests_total")
}
