package adminverify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/teemow/workspace-console/internal/apperr"
	"github.com/teemow/workspace-console/internal/instrumentation"
)

const maxUserInfoBytes = 1 << 20

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// userEmail resolves the token owner's email from the userinfo endpoint.
func (v *Verifier) userEmail(ctx context.Context, client *http.Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UserInfoTimeout)
	defer cancel()

	var info userInfo
	err := instrumentation.ObserveGoogleCall(ctx, v.cfg.Metrics, instrumentation.ServiceUserInfo, instrumentation.OperationGet,
		func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.UserInfoURL, nil)
			if err != nil {
				return fmt.Errorf("failed to build userinfo request: %w", err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
			if err != nil {
				return fmt.Errorf("failed to read userinfo response: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return userInfoError(resp.StatusCode, body)
			}
			if err := json.Unmarshal(body, &info); err != nil {
				return fmt.Errorf("failed to decode userinfo response: %w", err)
			}
			return nil
		})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperr.FromGoogle(instrumentation.ServiceUserInfo, "get", err)
	}

	email := strings.TrimSpace(info.Email)
	if email == "" {
		return "", errNoUserEmail
	}
	return email, nil
}

func userInfoError(status int, body []byte) error {
	msg := http.StatusText(status)
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
		if payload.ErrorDescription != "" {
			msg += ": " + payload.ErrorDescription
		}
	}
	apiErr := &apperr.APIError{Service: instrumentation.ServiceUserInfo, Op: "get", Status: status, Message: msg}
	if status == http.StatusUnauthorized {
		return apperr.Auth("userinfo get", apiErr)
	}
	return apiErr
}
