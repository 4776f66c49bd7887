package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/backendtest"
	"github.com/fastygo/dsp-console/internal/cli"
	"github.com/fastygo/dsp-console/internal/config"
	"github.com/fastygo/dsp-console/internal/navigation"
	"github.com/fastygo/dsp-console/repository/memory"
)

type console struct {
	t  *testing.T
	be *backendtest.Backend
	kv *memory.Store
}

type result struct {
	out string
	err string
	e   error
}

func newConsole(t *testing.T) *console {
	be := backendtest.New(t)
	be.AddUser(domain.Identity{Username: "alice", Email: "alice@example.com", FullName: "Alice Doe", Role: "business_owner"}, "correct")
	return &console{t: t, be: be, kv: memory.NewStore()}
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:     "dspctl",
		Environment: "development",
		API:         config.APIConfig{BaseURL: backendtest.BaseURL, RequestTimeout: 5 * time.Second},
		Storage:     config.StorageConfig{Driver: config.StorageMemory, Namespace: "auth-storage"},
		Context:     config.ContextConfig{ShutdownTimeout: time.Second},
		Logger:      config.LoggerConfig{Level: "warn", Encoding: "console"},
		Watch:       config.WatchConfig{Interval: time.Second},
	}
}

func (c *console) runContext(ctx context.Context, stdin string, args ...string) result {
	c.t.Helper()
	var out, errOut bytes.Buffer
	err := cli.Execute(ctx, cli.Options{
		In:         strings.NewReader(stdin),
		Out:        &out,
		Err:        &errOut,
		Config:     testConfig(),
		Logger:     zaptest.NewLogger(c.t),
		Store:      c.kv,
		HTTPClient: c.be.Client(),
	}, args)
	return result{out: out.String(), err: errOut.String(), e: err}
}

func (c *console) run(args ...string) result {
	c.t.Helper()
	return c.runContext(context.Background(), "", args...)
}

func (c *console) login() {
	c.t.Helper()
	res := c.runContext(context.Background(), "correct\n", "login", "-u", "alice", "--password-stdin")
	require.NoError(c.t, res.e)
}

func TestLoginWhoAmILogout(t *testing.T) {
	c := newConsole(t)

	res := c.runContext(context.Background(), "correct\n", "login", "-u", "alice", "--password-stdin")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Logged in as Alice Doe (business_owner)")
	assert.Equal(t, 2, c.kv.Len())

	res = c.run("whoami", "-o", "json")
	require.NoError(t, res.e)
	var who struct {
		User domain.Identity `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &who))
	assert.Equal(t, "alice", who.User.Username)

	res = c.run("whoami", "--refresh")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "alice@example.com")
	assert.Equal(t, 2, c.be.Calls("auth/me"))

	res = c.run("logout")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Logged out")
	assert.Zero(t, c.kv.Len())

	res = c.run("whoami")
	assert.ErrorIs(t, res.e, domain.ErrNotAuthenticated)
	assert.Equal(t, 3, cli.ExitCode(res.e))
}

func TestLoginPromptsForCredentials(t *testing.T) {
	c := newConsole(t)

	res := c.runContext(context.Background(), "alice\ncorrect\n", "login")

	require.NoError(t, res.e)
	assert.Contains(t, res.err, "Username: ")
	assert.Contains(t, res.err, "Password: ")
	assert.Equal(t, 2, c.kv.Len())
}

func TestLoginWrongPassword(t *testing.T) {
	c := newConsole(t)

	res := c.runContext(context.Background(), "wrong\n", "login", "-u", "alice", "--password-stdin")

	require.Error(t, res.e)
	assert.Equal(t, backendtest.DetailBadCredentials, res.e.Error())
	assert.Equal(t, 3, cli.ExitCode(res.e))
	assert.Zero(t, c.kv.Len())
	assert.NotContains(t, res.err, "Session ended")
}

func TestProtectedCommandsNeedSession(t *testing.T) {
	c := newConsole(t)

	for _, args := range [][]string{{"locations"}, {"cameras", "status", "1"}, {"dashboard"}, {"risk", "1"}} {
		res := c.run(args...)
		assert.ErrorIs(t, res.e, domain.ErrNotAuthenticated, "args %v", args)
	}
	assert.Zero(t, c.be.Calls("locations/"))
}

func TestRevokedSessionEndsOnFirstCall(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.be.RevokeAll()

	res := c.run("locations")

	require.Error(t, res.e)
	assert.Equal(t, 3, cli.ExitCode(res.e))
	assert.Contains(t, res.err, "Session ended (unauthorized). Run `dspctl login` to sign in again.")
	assert.Zero(t, c.kv.Len())

	res = c.run("locations")
	assert.ErrorIs(t, res.e, domain.ErrNotAuthenticated)
}

func TestRevokedSessionNotifiesExtraNavigator(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.be.RevokeAll()
	rec := navigation.NewRecorder("")

	var out, errOut bytes.Buffer
	err := cli.Execute(context.Background(), cli.Options{
		In:         strings.NewReader(""),
		Out:        &out,
		Err:        &errOut,
		Config:     testConfig(),
		Logger:     zaptest.NewLogger(t),
		Store:      c.kv,
		HTTPClient: c.be.Client(),
		Navigator:  rec,
	}, []string{"dashboard"})

	require.Error(t, err)
	assert.GreaterOrEqual(t, rec.Count(), 1)
	assert.Contains(t, errOut.String(), "Session ended")
}

func TestLocationCommands(t *testing.T) {
	c := newConsole(t)
	c.login()

	res := c.run("locations", "create", "--name", "Corner Cafe", "--address", "Main st 1", "--type", "cafe")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Corner Cafe")

	res = c.run("locations", "update", "1", "--active=false")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "inactive")

	loc, ok := c.be.Location(1)
	require.True(t, ok)
	assert.Equal(t, "Corner Cafe", loc.Name)
	assert.False(t, loc.IsActive)

	res = c.run("locations", "-o", "json")
	require.NoError(t, res.e)
	var listed []domain.Location
	require.NoError(t, json.Unmarshal([]byte(res.out), &listed))
	require.Len(t, listed, 1)

	res = c.run("locations", "create", "--name", "No address")
	assert.Equal(t, 2, cli.ExitCode(res.e))

	res = c.run("locations", "get", "abc")
	assert.Equal(t, 2, cli.ExitCode(res.e))

	res = c.run("locations", "delete", "1")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Location 1 deleted")

	res = c.run("locations", "get", "1")
	assert.True(t, domain.IsDomainError(res.e, domain.ErrCodeNotFound))
	assert.Equal(t, 1, cli.ExitCode(res.e))
}

func TestResourceCommands(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.be.AddLocation(domain.Location{Name: "Corner Cafe", IsActive: true})
	c.be.AddCamera(domain.Camera{ID: 4, LocationID: 1, Name: "Entrance", IPAddress: "10.0.0.5", Port: 554, IsActive: true})
	c.be.AddEmployee(domain.Employee{ID: 9, LocationID: 1, FullName: "Eve Stone", IsActive: true})
	c.be.SetAnalytics(1, []domain.Analytics{{LocationID: 1, RealCustomers: 42}}, domain.RiskScore{LocationID: 1, RiskScore: 0.4, RiskLevel: "medium"})

	res := c.run("cameras", "--location", "1")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "10.0.0.5:554")

	res = c.run("cameras", "connect", "--ip", "10.0.0.7")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, `"connected": true`)

	res = c.run("cameras", "analyze", "4", "--duration", "15")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, `"duration": 15`)

	res = c.run("employees", "9")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Eve Stone")

	res = c.run("analytics", "1")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "42")

	res = c.run("risk", "1")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "medium")

	res = c.run("dashboard", "-o", "json")
	require.NoError(t, res.e)
	var dash domain.Dashboard
	require.NoError(t, json.Unmarshal([]byte(res.out), &dash))
	assert.Equal(t, 1, dash.Locations)
	assert.Equal(t, 1, dash.ActiveCameras)
	assert.Equal(t, 1, dash.Unregistered)
}

func TestRegisterCommand(t *testing.T) {
	c := newConsole(t)

	res := c.runContext(context.Background(), "s3cret\n", "register", "-u", "carol", "--email", "carol@example.com", "--password-stdin")
	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Account carol created")

	res = c.runContext(context.Background(), "s3cret\n", "register", "-u", "carol", "--email", "carol@example.com", "--password-stdin")
	require.Error(t, res.e)
	assert.Equal(t, backendtest.DetailUsernameTaken, res.e.Error())
	assert.Equal(t, 2, cli.ExitCode(res.e))

	res = c.runContext(context.Background(), "s3cret\n", "login", "-u", "carol", "--password-stdin")
	require.NoError(t, res.e)
}

func TestWatchStopsWhenSessionEnds(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.be.RevokeAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res := c.runContext(ctx, "", "watch", "--interval", "1s")

	require.Error(t, res.e)
	assert.Equal(t, 3, cli.ExitCode(res.e))
	assert.NoError(t, ctx.Err())
	assert.Zero(t, c.kv.Len())
}

func TestWatchPrintsUntilCanceled(t *testing.T) {
	c := newConsole(t)
	c.login()
	c.be.AddLocation(domain.Location{Name: "Corner Cafe", IsActive: true})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	res := c.runContext(ctx, "", "watch", "--interval", "1s")

	require.NoError(t, res.e)
	assert.Contains(t, res.out, "Locations")
	assert.Contains(t, res.out, "1 (1 active)")
}

func TestUnsupportedOutputFormat(t *testing.T) {
	c := newConsole(t)
	res := c.run("logout", "-o", "yaml")
	assert.Error(t, res.e)
}

func TestAPIURLOverride(t *testing.T) {
	c := newConsole(t)
	res := c.run("--api-url", "ftp://elsewhere", "logout")
	assert.True(t, domain.IsDomainError(res.e, domain.ErrCodeInvalid))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, cli.ExitCode(nil))
	assert.Equal(t, 130, cli.ExitCode(context.Canceled))
	assert.Equal(t, 3, cli.ExitCode(domain.ErrSessionExpired))
	assert.Equal(t, 3, cli.ExitCode(&domain.APIError{Status: 401}))
	assert.Equal(t, 2, cli.ExitCode(&domain.APIError{Status: 422}))
	assert.Equal(t, 1, cli.ExitCode(errors.New("boom")))
}
