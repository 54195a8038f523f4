package gmail

import (
	"context"
	"fmt"
	"net/http"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// DefaultPageSize is the number of message ids requested per list page.
const DefaultPageSize = 100

// MessageService is the subset of the Gmail Users.Messages API the harvester uses.
type MessageService interface {
	// ListMessageIDs returns one page of message ids matching query and the next page token.
	ListMessageIDs(ctx context.Context, mailbox, query, pageToken string, pageSize int64) ([]string, string, error)

	// GetRaw returns the base64url-encoded RFC 5322 message.
	GetRaw(ctx context.Context, mailbox, id string) (string, error)
}

// ServiceFactory builds a MessageService that authenticates with client.
type ServiceFactory func(ctx context.Context, client *http.Client) (MessageService, error)

// NewServiceFactory returns a ServiceFactory using the Gmail API.
// opts are appended after the HTTP client, e.g. option.WithEndpoint in tests.
func NewServiceFactory(opts ...option.ClientOption) ServiceFactory {
	return func(ctx context.Context, client *http.Client) (MessageService, error) {
		all := append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
		svc, err := gmail.NewService(ctx, all...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gmail service: %w", err)
		}
		return &apiMessageService{users: svc.Users}, nil
	}
}

type apiMessageService struct {
	users *gmail.UsersService
}

func (s *apiMessageService) ListMessageIDs(ctx context.Context, mailbox, query, pageToken string, pageSize int64) ([]string, string, error) {
	req := s.users.Messages.List(mailbox).Q(query).Context(ctx)
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

	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, res.NextPageToken, nil
}

func (s *apiMessageService) GetRaw(ctx context.Context, mailbox, id string) (string, error) {
	msg, err := s.users.Messages.Get(mailbox, id).Format("raw").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return msg.Raw, nil
}
