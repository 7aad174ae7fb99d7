package event_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/event-resource-backend/config"
	"github.com/sharath018/event-resource-backend/internal/domain"
	"github.com/sharath018/event-resource-backend/internal/event"
	"github.com/sharath018/event-resource-backend/internal/inventory"
	"github.com/sharath018/event-resource-backend/internal/testutil"
	"github.com/sharath018/event-resource-backend/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(h *harness) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(&config.Config{}))

	handler := event.NewHandler(h.svc, h.coord, h.events)
	r.POST("/events", handler.CreateEvent)
	r.PUT("/events/:id", handler.UpdateEvent)
	r.GET("/events", handler.ListEvents)
	r.GET("/events/:id", handler.GetEvent)
	r.DELETE("/events/:id", handler.DeleteEvent)
	r.GET("/archives/:id", handler.GetArchive)
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateEventHandler(t *testing.T) {
	h := newHarness(t)
	r := newRouter(h)

	w := do(r, http.MethodPost, "/events", baseRequest())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res event.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotNil(t, res.Event)
	assert.Equal(t, "Open Day", res.Event.Name)

	w = do(r, http.MethodGet, fmt.Sprintf("/events/%d", res.Event.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/events?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []event.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCreateEventHandlerValidation(t *testing.T) {
	h := newHarness(t)
	r := newRouter(h)

	w := do(r, http.MethodPost, "/events", map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/events", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateEventHandlerConflict(t *testing.T) {
	h := newHarness(t)
	r := newRouter(h)

	w := do(r, http.MethodPost, "/events", baseRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	var created event.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req := baseRequest()
	req.Equipment = []inventory.Line{{EquipmentID: 1, Quantity: 5}}
	w = do(r, http.MethodPut, fmt.Sprintf("/events/%d", created.Event.ID), req)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error  string       `json:"error"`
		Result event.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "Projector")
	require.Len(t, body.Result.EquipmentRejected, 1)
	assert.Equal(t, uint(1), body.Result.EquipmentRejected[0].ID)
}

func TestCreateEventHandlerStoreFailure(t *testing.T) {
	h := newHarness(t)
	h.inventory.FailIDs[1] = testutil.ErrInjected
	r := newRouter(h)

	w := do(r, http.MethodPost, "/events", baseRequest())
	assert.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.ErrPersistence.Error(), body.Error)
}

func TestEventHandlerNotFound(t *testing.T) {
	h := newHarness(t)
	r := newRouter(h)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/events/9", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/events/9", baseRequest()).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/events/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/events/abc", nil).Code)
}

func TestDeleteEventHandlerArchives(t *testing.T) {
	h := newHarness(t)
	r := newRouter(h)

	w := do(r, http.MethodPost, "/events", baseRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	var created event.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(r, http.MethodDelete, fmt.Sprintf("/events/%d?archive=true", created.Event.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Archive event.Archive `json:"archive"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, created.Event.ID, body.Archive.EventID)

	w = do(r, http.MethodGet, fmt.Sprintf("/archives/%d", body.Archive.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
