package http_test

import (
	"testing"

	zenhttp "github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Table covers every status rule
func TestTranslate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		code        zen.ErrorCode
		detail      []string
		rawBody     string
		familyOf    *zen.Error
		notFamilyOf *zen.Error
	}{
		{
			name:   "unauthorized",
			status: 401,
			body:   `{"detail":"Not authenticated"}`,
			code:   zen.CodeAuthorization,
			detail: []string{"Not authenticated"},
		},
		{
			name:    "unauthorized ignores explicit code",
			status:  401,
			body:    `{"code":"NOT_FOUND"}`,
			code:    zen.CodeAuthorization,
			rawBody: `{"code":"NOT_FOUND"}`,
		},
		{
			name:        "plain not found",
			status:      404,
			body:        `{"detail":["KeyError","Unable to get stack"]}`,
			code:        zen.CodeNotFound,
			detail:      []string{"KeyError", "Unable to get stack"},
			notFamilyOf: zen.ErrDoesNotExist,
		},
		{
			name:     "does not exist",
			status:   404,
			body:     `{"detail":["DoesNotExistException","No team named x"]}`,
			code:     zen.CodeDoesNotExist,
			detail:   []string{"DoesNotExistException", "No team named x"},
			familyOf: zen.ErrNotFound,
		},
		{
			name:     "component exists wins over stack exists",
			status:   409,
			body:     `{"detail":["StackComponentExistsError","StackExistsError"]}`,
			code:     zen.CodeComponentExists,
			detail:   []string{"StackComponentExistsError", "StackExistsError"},
			familyOf: zen.ErrEntityExists,
		},
		{
			name:     "stack exists",
			status:   409,
			body:     `{"detail":["StackExistsError","Stack 'default' already registered"]}`,
			code:     zen.CodeStackExists,
			detail:   []string{"StackExistsError", "Stack 'default' already registered"},
			familyOf: zen.ErrConflict,
		},
		{
			name:   "entity exists",
			status: 409,
			body:   `{"detail":["EntityExistsError","Team exists"]}`,
			code:   zen.CodeEntityExists,
			detail: []string{"EntityExistsError", "Team exists"},
		},
		{
			name:        "generic conflict",
			status:      409,
			body:        `{"detail":["ValueError","bad state"]}`,
			code:        zen.CodeConflict,
			detail:      []string{"ValueError", "bad state"},
			notFamilyOf: zen.ErrEntityExists,
		},
		{
			name:   "explicit code takes precedence",
			status: 409,
			body:   `{"code":"STACK_EXISTS","detail":"name taken"}`,
			code:   zen.CodeStackExists,
			detail: []string{"name taken"},
		},
		{
			name:     "explicit code refining not found",
			status:   404,
			body:     `{"code":"DOES_NOT_EXIST","detail":"no such stack"}`,
			code:     zen.CodeDoesNotExist,
			detail:   []string{"no such stack"},
			familyOf: zen.ErrNotFound,
		},
		{
			name:        "explicit code outside the status family is ignored",
			status:      500,
			body:        `{"code":"NOT_FOUND","detail":"boom"}`,
			code:        zen.CodeServerFault,
			detail:      []string{"boom"},
			notFamilyOf: zen.ErrNotFound,
		},
		{
			name:        "conflict code on not found status is ignored",
			status:      404,
			body:        `{"code":"STACK_EXISTS","detail":"missing"}`,
			code:        zen.CodeNotFound,
			detail:      []string{"missing"},
			notFamilyOf: zen.ErrConflict,
		},
		{
			name:        "authorization code on conflict status is ignored",
			status:      409,
			body:        `{"code":"UNAUTHORIZED","detail":["EntityExistsError","x"]}`,
			code:        zen.CodeEntityExists,
			detail:      []string{"EntityExistsError", "x"},
			notFamilyOf: zen.ErrAuthorization,
		},
		{
			name:   "unknown explicit code falls back to markers",
			status: 409,
			body:   `{"code":"SOMETHING_NEW","detail":["EntityExistsError","x"]}`,
			code:   zen.CodeEntityExists,
			detail: []string{"EntityExistsError", "x"},
		},
		{
			name:   "validation with structured detail",
			status: 422,
			body:   `{"detail":[{"loc":["body","name"], "msg":"field required"}]}`,
			code:   zen.CodeValidation,
			detail: []string{`{"loc":["body","name"],"msg":"field required"}`},
		},
		{
			name:    "server fault keeps raw body",
			status:  500,
			body:    "Internal Server Error",
			code:    zen.CodeServerFault,
			rawBody: "Internal Server Error",
		},
		{
			name:    "unexpected status",
			status:  418,
			body:    "",
			code:    zen.CodeUnexpectedStatus,
			rawBody: "",
		},
		{
			name:    "redirect is unexpected",
			status:  302,
			body:    `{"location":"/elsewhere"}`,
			code:    zen.CodeUnexpectedStatus,
			rawBody: `{"location":"/elsewhere"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			payload, err := zenhttp.Translate(tt.status, []byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, payload)

			zerr, ok := zen.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, zerr.Code)
			assert.Equal(t, tt.status, zerr.StatusCode)
			assert.Equal(t, tt.detail, zerr.Detail)

			if tt.detail == nil {
				assert.Equal(t, tt.rawBody, zerr.Body)
			}

			if tt.familyOf != nil {
				assert.ErrorIs(t, err, tt.familyOf)
			}

			if tt.notFamilyOf != nil {
				assert.NotErrorIs(t, err, tt.notFamilyOf)
			}
		})
	}
}

func TestTranslate_Success(t *testing.T) {
	t.Parallel()

	payload, err := zenhttp.Translate(200, []byte(`  {"id":"abc"}`+"\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(payload))

	payload, err = zenhttp.Translate(204, nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(payload))

	payload, err = zenhttp.Translate(200, []byte("null\n"))
	require.NoError(t, err)
	assert.Equal(t, "null", string(payload))

	payload, err = zenhttp.Translate(201, []byte(`"invite-token"`))
	require.NoError(t, err)
	assert.Equal(t, `"invite-token"`, string(payload))

	_, err = zenhttp.Translate(200, []byte(`{"id":`))
	require.ErrorIs(t, err, zen.ErrMalformedResponse)
}

func TestTranslate_EmptySuccessBody(t *testing.T) {
	t.Parallel()

	for _, status := range []int{200, 201} {
		for _, body := range []string{"", "   \n"} {
			payload, err := zenhttp.Translate(status, []byte(body))
			require.ErrorIs(t, err, zen.ErrMalformedResponse, "status %d body %q", status, body)
			assert.Nil(t, payload)

			zerr, ok := zen.AsError(err)
			require.True(t, ok)
			assert.Equal(t, status, zerr.StatusCode)
		}
	}

	payload, err := zenhttp.Translate(205, []byte("  "))
	require.NoError(t, err)
	assert.Equal(t, "null", string(payload))
}

func TestTranslate_MessageReproducesServerReason(t *testing.T) {
	t.Parallel()

	_, err := zenhttp.Translate(404, []byte(`{"detail":["DoesNotExistException","Stack","abc"]}`))
	require.Error(t, err)

	zerr, ok := zen.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "DoesNotExistException: Stack: abc", zerr.Message())
}
