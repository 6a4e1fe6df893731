package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestToOAuth2Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantDesc string
		wantOK   bool
	}{
		{
			name:     "description from wrap",
			err:      fmt.Errorf("%w: code is required", service.ErrInvalidRequest),
			wantCode: authsdk.ErrorCodeInvalidRequest,
			wantDesc: "code is required",
			wantOK:   true,
		},
		{
			name:     "expired code",
			err:      service.ErrCodeExpired,
			wantCode: authsdk.ErrorCodeInvalidGrant,
			wantDesc: "code expired",
			wantOK:   true,
		},
		{
			name:     "redirect mismatch",
			err:      service.ErrRedirectURIMismatch,
			wantCode: authsdk.ErrorCodeInvalidRequest,
			wantOK:   true,
		},
		{
			name:   "unknown",
			err:    errors.New("disk on fire"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oerr, ok := toOAuth2Error(tt.err)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			require.Equal(t, tt.wantCode, oerr.Code)
			if tt.wantDesc != "" {
				require.Equal(t, tt.wantDesc, oerr.Description)
			}
		})
	}
}
