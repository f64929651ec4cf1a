package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/calcbread/internal/client/api"
	"github.com/iudanet/calcbread/internal/client/iocli"
	"github.com/iudanet/calcbread/internal/client/storage"
	"github.com/iudanet/calcbread/internal/client/storage/boltdb"
	"github.com/iudanet/calcbread/internal/crypto"
	"github.com/iudanet/calcbread/internal/server/handlers"
	"github.com/iudanet/calcbread/internal/server/identity"
	"github.com/iudanet/calcbread/internal/server/jwt"
	"github.com/iudanet/calcbread/internal/server/service"
	"github.com/iudanet/calcbread/internal/server/storage/sqlite"
)

type testEnv struct {
	cli      *Cli
	sessions *boltdb.Storage
}

// newTestEnv поднимает настоящий сервер поверх in-memory SQLite
// и CLI с bbolt сессией во временном каталоге
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewService([]byte("cli-test-secret"), 30*time.Minute)

	server := httptest.NewServer(handlers.NewRouter(handlers.RouterConfig{
		Logger:       logger,
		Auth:         service.NewAuthService(logger, store, crypto.NewHasher(bcrypt.MinCost), tokens),
		Calculations: service.NewCalculationService(logger, store),
		Resolver:     identity.NewResolver(logger, tokens, store),
		DB:           store,
		Registry:     prometheus.NewRegistry(),
	}))
	t.Cleanup(server.Close)

	sessions, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	return &testEnv{
		cli:      New(api.NewClient(server.URL), sessions, iocli.New(strings.NewReader(""), io.Discard)),
		sessions: sessions,
	}
}

// run выполняет команду с заданным вводом и возвращает вывод
func (e *testEnv) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	e.cli.io = iocli.New(strings.NewReader(input), &out)
	err := e.cli.Run(context.Background(), args)
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, input string, args ...string) string {
	t.Helper()

	out, err := e.run(t, input, args...)
	require.NoError(t, err, out)
	return out
}

func (e *testEnv) register(t *testing.T, email, username string) {
	t.Helper()
	e.mustRun(t, email+"\n"+username+"\npassword123\npassword123\n", "register")
}

func TestRun_UnknownCommand(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "frobnicate")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = env.run(t, "")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegister_SavesSession(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "Alice@Example.com\nalice\npassword123\npassword123\n", "register")
	assert.Contains(t, out, "Registration successful")

	session, err := env.sessions.GetSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "Alice@Example.com", session.Email)
	assert.True(t, session.ExpiresAt.After(time.Now().Add(29*time.Minute)))

	out = env.mustRun(t, "", "me")
	assert.Contains(t, out, "alice@example.com")
	assert.Contains(t, out, "Username: alice")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "alice@example.com\nalice\npassword123\npassword124\n", "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")

	_, err = env.sessions.GetSession(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "alice")

	_, err := env.run(t, "alice@example.com\nalice2\npassword123\npassword123\n", "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestLoginLogoutStatus(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "alice")
	env.mustRun(t, "", "logout")

	out := env.mustRun(t, "", "status")
	assert.Contains(t, out, "Not authenticated")

	_, err := env.run(t, "", "me")
	assert.ErrorIs(t, err, errNotAuthenticated)

	_, err = env.run(t, "alice@example.com\nwrong-password\n", "login")
	require.Error(t, err)
	assert.Equal(t, 401, api.StatusCode(err))

	out = env.mustRun(t, "alice@example.com\npassword123\n", "login")
	assert.Contains(t, out, "Login successful")

	out = env.mustRun(t, "", "status")
	assert.Contains(t, out, "Status: Authenticated")
	assert.Contains(t, out, "Email: alice@example.com")
	assert.Contains(t, out, "Time remaining")

	out = env.mustRun(t, "", "logout")
	assert.Contains(t, out, "Logout successful")

	out = env.mustRun(t, "", "logout")
	assert.Contains(t, out, "Not logged in")
}

func TestStatus_ExpiredSession(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "alice")

	env.cli.now = func() time.Time { return time.Now().Add(time.Hour) }

	out := env.mustRun(t, "", "status")
	assert.Contains(t, out, "Token has expired")

	_, err := env.run(t, "", "me")
	assert.ErrorIs(t, err, errSessionExpired)
}

func TestCalc_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "", "calc", "add", "10", "5")
	assert.Contains(t, out, "10 + 5 = 15")
	assert.Contains(t, out, "anonymous")
}

func TestCalc_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		wantErr string
		args    []string
	}{
		{name: "missing operands", args: []string{"calc", "add", "1"}, wantErr: "usage"},
		{name: "bad operand", args: []string{"calc", "add", "x", "1"}, wantErr: "invalid operand a"},
		{name: "divide by zero", args: []string{"calc", "divide", "10", "0"}, wantErr: "server error (422)"},
		{name: "unknown operation", args: []string{"calc", "modulo", "10", "3"}, wantErr: "server error (422)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// Ничего не сохранилось
	out := env.mustRun(t, "", "list")
	assert.Contains(t, out, "No calculations found")
}

func TestList_ScopedToSession(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "", "calc", "multiply", "6", "7")

	env.register(t, "alice@example.com", "alice")
	env.mustRun(t, "", "calc", "subtract", "10", "3")
	env.mustRun(t, "", "calc", "add", "1", "2")

	out := env.mustRun(t, "", "list")
	assert.Contains(t, out, "your history")
	assert.Contains(t, out, "10 - 3 = 7")
	assert.Contains(t, out, "1 + 2 = 3")
	assert.NotContains(t, out, "6 * 7 = 42")
	assert.Contains(t, out, "Showing 2 of 2")

	out = env.mustRun(t, "", "list", "-op", "add")
	assert.Contains(t, out, "1 + 2 = 3")
	assert.NotContains(t, out, "10 - 3")

	out = env.mustRun(t, "", "list", "-limit", "1")
	assert.Contains(t, out, "Showing 1 of 2")

	env.mustRun(t, "", "logout")

	out = env.mustRun(t, "", "list")
	assert.Contains(t, out, "all users")
	assert.Contains(t, out, "6 * 7 = 42")
	assert.Contains(t, out, "Showing 3 of 3")
}

func TestList_InvalidFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "", "list", "-limit", "abc")
	require.Error(t, err)

	_, err = env.run(t, "", "list", "extra")
	require.Error(t, err)

	_, err = env.run(t, "", "list", "-op", "modulo")
	require.Error(t, err)
	assert.Equal(t, 422, api.StatusCode(err))
}

func TestGetEditDelete(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "", "calc", "add", "1", "1")

	out := env.mustRun(t, "", "get", "1")
	assert.Contains(t, out, "ID:         1")
	assert.Contains(t, out, "1 + 1 = 2")
	assert.Contains(t, out, "Updated:    -")

	out = env.mustRun(t, "", "edit", "1", "-op", "subtract", "-a", "10", "-b", "3")
	assert.Contains(t, out, "Calculation updated")
	assert.Contains(t, out, "10 - 3 = 7")
	assert.NotContains(t, out, "Updated:    -")

	// Только один операнд: -a 0 передается явно
	out = env.mustRun(t, "", "edit", "1", "-a", "0")
	assert.Contains(t, out, "0 - 3 = -3")

	out = env.mustRun(t, "", "delete", "1")
	assert.Contains(t, out, "Calculation #1 deleted")

	_, err := env.run(t, "", "get", "1")
	require.Error(t, err)
	assert.Equal(t, 404, api.StatusCode(err))

	_, err = env.run(t, "", "delete", "1")
	assert.Equal(t, 404, api.StatusCode(err))
}

func TestEdit_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "", "calc", "divide", "10", "4")

	tests := []struct {
		name    string
		wantErr string
		args    []string
	}{
		{name: "missing id", args: []string{"edit"}, wantErr: "missing calculation ID"},
		{name: "bad id", args: []string{"edit", "abc", "-a", "1"}, wantErr: "invalid calculation ID"},
		{name: "no changes", args: []string{"edit", "1"}, wantErr: "nothing to update"},
		{name: "zero divisor", args: []string{"edit", "1", "-b", "0"}, wantErr: "Cannot divide by zero"},
		{name: "not found", args: []string{"edit", "42", "-a", "1"}, wantErr: "Calculation not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	// Запись не изменилась
	out := env.mustRun(t, "", "get", "1")
	assert.Contains(t, out, "10 / 4 = 2.5")
}

func TestGetDelete_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	for _, cmd := range []string{"get", "delete"} {
		_, err := env.run(t, "", cmd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing calculation ID")

		_, err = env.run(t, "", cmd, "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid calculation ID")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "", "health")
	assert.Contains(t, out, "Status:    healthy")
	assert.Contains(t, out, "Database:  ok")
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	PrintUsage(iocli.New(strings.NewReader(""), &out))

	for _, cmd := range []string{"register", "login", "logout", "status", "me", "calc", "list", "get", "edit", "delete", "health"} {
		assert.Contains(t, out.String(), "  "+cmd)
	}
}
