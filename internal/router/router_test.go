package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/workspace-console/internal/adminverify"
)

func TestRoute(t *testing.T) {
	superAdmin := &adminverify.Verification{IsSuperAdmin: true, UserEmail: "root@example.com"}
	regular := &adminverify.Verification{IsSuperAdmin: false, UserEmail: "user@example.com"}

	tests := []struct {
		name string
		text string
		v    *adminverify.Verification
		want Decision
	}{
		{
			name: "unrelated request is declined without tools",
			text: "What's the weather like tomorrow?",
			v:    superAdmin,
			want: Decision{Route: RouteDecline, Message: MsgDecline},
		},
		{
			name: "unrelated request declined before verification",
			text: "tell me a joke",
			v:    nil,
			want: Decision{Route: RouteDecline, Message: MsgDecline},
		},
		{
			name: "related request needs verification",
			text: "Show me all users in example.com",
			v:    nil,
			want: Decision{Route: RouteVerify, Tools: []string{ToolVerify}, Message: MsgVerifyFirst, Keyword: "users"},
		},
		{
			name: "non admin is denied",
			text: "list spam from yesterday",
			v:    regular,
			want: Decision{Route: RouteDenied, Message: MsgDenied, Keyword: "spam"},
		},
		{
			name: "users route",
			text: "List the DIRECTORY",
			v:    superAdmin,
			want: Decision{Route: RouteUsers, Tools: []string{ToolListUsers}, Keyword: "directory"},
		},
		{
			name: "mail route",
			text: "Analyze email headers for last week",
			v:    superAdmin,
			want: Decision{Route: RouteMail, Tools: []string{ToolAnalyzeEmails, ToolYesterdayMails}, Keyword: "email"},
		},
		{
			name: "korean users",
			text: "사용자 목록 보여줘",
			v:    superAdmin,
			want: Decision{Route: RouteUsers, Tools: []string{ToolListUsers}, Keyword: "사용자 목록"},
		},
		{
			name: "korean mail",
			text: "어제 받은 스팸 확인해줘",
			v:    superAdmin,
			want: Decision{Route: RouteMail, Tools: []string{ToolAnalyzeEmails, ToolYesterdayMails}, Keyword: "스팸"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.text, tt.v))
		})
	}
}
