package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestAPIMessageService(t *testing.T) {
	var listQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/gmail/v1/users/user@example.com/messages":
			q := r.URL.Query()
			listQueries = append(listQueries, q.Get("q"))
			assert.Equal(t, "50", q.Get("maxResults"))
			if q.Get("pageToken") == "" {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"messages":      []map[string]string{{"id": "m1"}, {"id": "m2"}},
					"nextPageToken": "p2",
				})
				return
			}
			assert.Equal(t, "p2", q.Get("pageToken"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"messages": []map[string]string{{"id": "m3"}},
			})
		case "/gmail/v1/users/user@example.com/messages/m1":
			assert.Equal(t, "raw", r.URL.Query().Get("format"))
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "m1", "raw": "U3ViamVjdDogaGkNCg"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := NewServiceFactory(option.WithEndpoint(srv.URL+"/"))(ctx, srv.Client())
	require.NoError(t, err)

	ids, next, err := svc.ListMessageIDs(ctx, "user@example.com", "after:2024/05/01 before:2024/05/02", "", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
	assert.Equal(t, "p2", next)

	ids, next, err = svc.ListMessageIDs(ctx, "user@example.com", "after:2024/05/01 before:2024/05/02", next, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"m3"}, ids)
	assert.Empty(t, next)
	assert.Equal(t, []string{"after:2024/05/01 before:2024/05/02", "after:2024/05/01 before:2024/05/02"}, listQueries)

	raw, err := svc.GetRaw(ctx, "user@example.com", "m1")
	require.NoError(t, err)
	text, err := DecodeRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, "Subject: hi\r\n", string(text))

	_, err = svc.GetRaw(ctx, "user@example.com", "missing")
	assert.Error(t, err)
}
