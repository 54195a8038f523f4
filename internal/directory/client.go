package directory

import (
	"context"
	"fmt"
	"net/http"

	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"
)

// DefaultPageSize is the users.list page size, the API maximum for full projection.
const DefaultPageSize = 100

// UserService is the subset of the Admin SDK Directory API this package uses.
type UserService interface {
	// ListUsers returns one page of the domain's users ordered by email and the next page token.
	ListUsers(ctx context.Context, domain, pageToken string, pageSize int64) ([]UserRecord, string, error)

	// GetUser returns one user with the administrator view.
	GetUser(ctx context.Context, userKey string) (UserRecord, error)
}

// ServiceFactory builds a UserService that authenticates with client.
type ServiceFactory func(ctx context.Context, client *http.Client) (UserService, error)

// NewServiceFactory returns a ServiceFactory using the Directory API.
// opts are appended after the HTTP client.
func NewServiceFactory(opts ...option.ClientOption) ServiceFactory {
	return func(ctx context.Context, client *http.Client) (UserService, error) {
		all := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
		svc, err := admin.NewService(ctx, all...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Directory service: %w", err)
		}
		return &apiUserService{users: svc.Users}, nil
	}
}

type apiUserService struct {
	users *admin.UsersService
}

func (s *apiUserService) ListUsers(ctx context.Context, domain, pageToken string, pageSize int64) ([]UserRecord, string, error) {
	req := s.users.List().
		Domain(domain).
		OrderBy("email").
		Projection("full").
		Context(ctx)
	if pageSize > 0 {
		req = req.MaxResults(pageSize)
	}
	if pageToken != "" {
		req = req.PageToken(pageToken)
	}
	res, err := req.Do()
	if err != nil {
		return nil, "", err
	}

	records := make([]UserRecord, 0, len(res.Users))
	for _, u := range res.Users {
		records = append(records, toRecord(u))
	}
	return records, res.NextPageToken, nil
}

func (s *apiUserService) GetUser(ctx context.Context, userKey string) (UserRecord, error) {
	u, err := s.users.Get(userKey).
		ViewType("admin_view").
		Projection("full").
		Context(ctx).
		Do()
	if err != nil {
		return UserRecord{}, err
	}
	return toRecord(u), nil
}

func toRecord(u *admin.User) UserRecord {
	return UserRecord{
		PrimaryEmail: u.PrimaryEmail,
		Aliases:      u.Aliases,
		IsAdmin:      u.IsAdmin,
		Suspended:    u.Suspended,
	}
}
