package directory

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

func TestAPIUserService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch r.URL.Path {
		case "/admin/directory/v1/users":
			assert.Equal(t, "example.com", q.Get("domain"))
			assert.Equal(t, "email", q.Get("orderBy"))
			assert.Equal(t, "full", q.Get("projection"))
			assert.Equal(t, "100", q.Get("maxResults"))
			assert.Equal(t, "tok", q.Get("pageToken"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"users": []map[string]any{
					{"primaryEmail": "alice@example.com", "aliases": []string{"al@example.com"}, "isAdmin": true},
					{"primaryEmail": "bob@example.com", "suspended": true},
				},
				"nextPageToken": "next",
			})
		case "/admin/directory/v1/users/alice@example.com":
			assert.Equal(t, "admin_view", q.Get("viewType"))
			assert.Equal(t, "full", q.Get("projection"))
			_ = json.NewEncoder(w).Encode(map[string]any{"primaryEmail": "alice@example.com", "isAdmin": true})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Resource Not Found: userKey"}}`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := NewServiceFactory(option.WithEndpoint(srv.URL+"/"))(ctx, srv.Client())
	require.NoError(t, err)

	records, next, err := svc.ListUsers(ctx, "example.com", "tok", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, "next", next)
	assert.Equal(t, []UserRecord{
		{PrimaryEmail: "alice@example.com", Aliases: []string{"al@example.com"}, IsAdmin: true},
		{PrimaryEmail: "bob@example.com", Suspended: true},
	}, records)

	user, err := svc.GetUser(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	_, err = svc.GetUser(ctx, "nobody@example.com")
	assert.Error(t, err)
}
