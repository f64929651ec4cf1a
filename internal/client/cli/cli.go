package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iudanet/calcbread/internal/client/api"
	"github.com/iudanet/calcbread/internal/client/iocli"
	"github.com/iudanet/calcbread/internal/client/storage"
	pkgapi "github.com/iudanet/calcbread/pkg/api"
)

var (
	// ErrUnknownCommand неизвестная команда, вызывающий печатает usage
	ErrUnknownCommand = errors.New("unknown command")

	errNotAuthenticated = errors.New("not authenticated. Please run 'calcbread login' first")
	errSessionExpired   = errors.New("session expired. Please run 'calcbread login' again")
)

// APIClient операции сервера, которые использует CLI
type APIClient interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.TokenResponse, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Me(ctx context.Context, token string) (*pkgapi.UserResponse, error)
	CreateCalculation(ctx context.Context, token string, req pkgapi.CreateCalculationRequest) (*pkgapi.CalculationResponse, error)
	ListCalculations(ctx context.Context, token string, params api.ListParams) (*pkgapi.CalculationListResponse, error)
	GetCalculation(ctx context.Context, token string, id int64) (*pkgapi.CalculationResponse, error)
	UpdateCalculation(ctx context.Context, token string, id int64, req pkgapi.UpdateCalculationRequest) (*pkgapi.CalculationResponse, error)
	DeleteCalculation(ctx context.Context, token string, id int64) error
	Health(ctx context.Context) (*pkgapi.HealthResponse, error)
}

type Cli struct {
	apiClient APIClient
	sessions  storage.SessionStore
	io        iocli.IO
	now       func() time.Time
}

func New(apiClient APIClient, sessions storage.SessionStore, io iocli.IO) *Cli {
	return &Cli{
		apiClient: apiClient,
		sessions:  sessions,
		io:        io,
		now:       time.Now,
	}
}

// activeToken возвращает токен действующей сессии или пустую строку.
// Команды с необязательной аутентификацией выполняются анонимно без сессии.
func (c *Cli) activeToken(ctx context.Context) (string, error) {
	session, err := c.sessions.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	if session.Expired(c.now()) {
		return "", nil
	}
	return session.Token, nil
}

// requireSession возвращает действующую сессию или ошибку с подсказкой
func (c *Cli) requireSession(ctx context.Context) (*storage.Session, error) {
	session, err := c.sessions.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, errNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Expired(c.now()) {
		return nil, errSessionExpired
	}
	return session, nil
}

// saveToken сохраняет выданный сервером токен как текущую сессию
func (c *Cli) saveToken(ctx context.Context, email string, token *pkgapi.TokenResponse) (*storage.Session, error) {
	session := &storage.Session{
		Token:     token.AccessToken,
		Email:     email,
		ExpiresAt: c.now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}
	if err := c.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid calculation ID %q: must be a positive integer", raw)
	}
	return id, nil
}

func parseOperand(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid operand %s %q: must be a number", name, raw)
	}
	return v, nil
}

func PrintUsage(out iocli.IO) {
	out.Println("Calcbread Client")
	out.Println()
	out.Println("Usage:")
	out.Println("  calcbread [OPTIONS] COMMAND")
	out.Println()
	out.Println("Options:")
	out.Println("  --version                    Show version information")
	out.Println("  --server URL                 Server URL (default: http://localhost:8080)")
	out.Println("  --db PATH                    Path to local session database (default: calcbread-client.db)")
	out.Println()
	out.Println("Commands:")
	out.Println("  register                          Register new user and start a session")
	out.Println("  login                             Login to server")
	out.Println("  logout                            Delete local session")
	out.Println("  status                            Show authentication status")
	out.Println("  me                                Show current user profile")
	out.Println("  calc <op> <a> <b>                 Calculate and save (add, subtract, multiply, divide)")
	out.Println("  list [-op OP] [-skip N] [-limit N] List calculation history")
	out.Println("  get <id>                          Show calculation")
	out.Println("  edit <id> [-op OP] [-a N] [-b N]  Change calculation and recompute result")
	out.Println("  delete <id>                       Delete calculation")
	out.Println("  health                            Check server health")
	out.Println()
	out.Println("Without a session calculations are saved anonymously and")
	out.Println("'list' shows the whole history.")
	out.Println()
	out.Println("Examples:")
	out.Println("  calcbread register")
	out.Println("  calcbread calc divide 10 4")
	out.Println("  calcbread list -op add -limit 20")
	out.Println("  calcbread edit 3 -op subtract -b 3")
	out.Println("  calcbread --server https://example.com login")
}
