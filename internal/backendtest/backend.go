// Package backendtest runs an in-memory DSP backend for tests. It speaks the
// same wire format as the real service: form-encoded login, bearer
// credentials and {"detail": ...} error bodies.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/dsp-console/api/transport"
	"github.com/fastygo/dsp-console/domain"
)

// BaseURL is the address clients should be configured with. The host is
// never resolved: Client dials the in-memory listener directly.
const BaseURL = "http://dsp.test/api/v1/"

const prefix = "/api/v1"

const (
	DetailBadCredentials  = "Incorrect username or password"
	DetailInvalidToken    = "Could not validate credentials"
	DetailUsernameTaken   = "Username already registered"
	DetailNotFound        = "Not found"
	userValueUsername     = "username"
	defaultTokenLifetime  = time.Hour
	defaultLocationsStart = 1
)

type account struct {
	password string
	identity domain.Identity
}

// Option customizes a Backend before it starts serving.
type Option func(*Backend)

// WithRoute registers an extra handler, e.g. to force an error status on a
// path. path is relative to /api/v1.
func WithRoute(method, path string, handler fasthttp.RequestHandler) Option {
	return func(b *Backend) {
		b.extra = append(b.extra, route{method: method, path: path, handler: handler})
	}
}

// WithTokenLifetime sets the exp claim of issued tokens.
func WithTokenLifetime(ttl time.Duration) Option {
	return func(b *Backend) { b.ttl = ttl }
}

type route struct {
	method  string
	path    string
	handler fasthttp.RequestHandler
}

// Backend is a fake DSP API. Safe for concurrent use.
type Backend struct {
	ln    *fasthttputil.InmemoryListener
	ttl   time.Duration
	extra []route

	mu         sync.Mutex
	generation int
	accounts   map[string]account
	nextID     int64
	locations  map[int64]domain.Location
	cameras    []domain.Camera
	employees  []domain.Employee
	analytics  map[int64][]domain.Analytics
	risk       map[int64]domain.RiskScore
	calls      map[string]int
	lastAuth   map[string]string
}

// New starts a backend that lives until the test ends.
func New(t testing.TB, opts ...Option) *Backend {
	t.Helper()
	b := &Backend{
		ln:        fasthttputil.NewInmemoryListener(),
		ttl:       defaultTokenLifetime,
		accounts:  map[string]account{},
		nextID:    defaultLocationsStart,
		locations: map[int64]domain.Location{},
		analytics: map[int64][]domain.Analytics{},
		risk:      map[int64]domain.RiskScore{},
		calls:     map[string]int{},
		lastAuth:  map[string]string{},
	}
	for _, opt := range opts {
		opt(b)
	}

	srv := &fasthttp.Server{Handler: b.routes().Handler}
	go func() { _ = srv.Serve(b.ln) }()
	t.Cleanup(func() { _ = b.ln.Close() })
	return b
}

// Client returns a fasthttp client wired to the in-memory listener.
func (b *Backend) Client() *fasthttp.Client {
	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return b.ln.Dial() },
	}
}

// AddUser creates an account. A zero identity ID is assigned.
func (b *Backend) AddUser(identity domain.Identity, password string) domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identity.ID == 0 {
		identity.ID = int64(len(b.accounts) + 1)
	}
	b.accounts[identity.Username] = account{password: password, identity: identity}
	return identity
}

// AddLocation stores loc, assigning an id when it has none.
func (b *Backend) AddLocation(loc domain.Location) domain.Location {
	b.mu.Lock()
	defer b.mu.Unlock()
	if loc.ID == 0 {
		loc.ID = b.nextID
		b.nextID++
	} else if loc.ID >= b.nextID {
		b.nextID = loc.ID + 1
	}
	b.locations[loc.ID] = loc
	return loc
}

func (b *Backend) AddCamera(c domain.Camera) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cameras = append(b.cameras, c)
}

func (b *Backend) AddEmployee(e domain.Employee) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.employees = append(b.employees, e)
}

func (b *Backend) SetAnalytics(locationID int64, rows []domain.Analytics, risk domain.RiskScore) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.analytics[locationID] = rows
	b.risk[locationID] = risk
}

// Location returns the stored location with id.
func (b *Backend) Location(id int64) (domain.Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	loc, ok := b.locations[id]
	return loc, ok
}

// IssueToken signs a credential for username as the login endpoint would.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issueLocked(username)
}

// RevokeAll invalidates every credential issued so far.
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
}

// Calls reports how many requests reached path (relative to /api/v1).
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// LastAuthorization returns the Authorization header of the last request
// to path.
func (b *Backend) LastAuthorization(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastAuth[path]
}

func (b *Backend) issueLocked(username string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(b.ttl).Unix(),
	}).SignedString(b.secretLocked())
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) secretLocked() []byte {
	return []byte(fmt.Sprintf("backendtest-%d", b.generation))
}

func (b *Backend) routes() *router.Router {
	r := router.New()
	r.RedirectTrailingSlash = false

	overridden := map[string]bool{}
	for _, rt := range b.extra {
		path := prefix + "/" + strings.TrimLeft(rt.path, "/")
		overridden[rt.method+" "+path] = true
		r.Handle(rt.method, path, b.track(rt.handler))
	}
	handle := func(method, path string, h fasthttp.RequestHandler) {
		if overridden[method+" "+prefix+path] {
			return
		}
		r.Handle(method, prefix+path, b.track(h))
	}

	handle(fasthttp.MethodPost, "/auth/login", b.login)
	handle(fasthttp.MethodPost, "/auth/register", b.register)
	handle(fasthttp.MethodGet, "/auth/me", b.requireBearer(b.me))

	handle(fasthttp.MethodGet, "/locations/", b.requireBearer(b.listLocations))
	handle(fasthttp.MethodPost, "/locations/", b.requireBearer(b.createLocation))
	handle(fasthttp.MethodGet, "/locations/{id}", b.requireBearer(b.getLocation))
	handle(fasthttp.MethodPut, "/locations/{id}", b.requireBearer(b.updateLocation))
	handle(fasthttp.MethodDelete, "/locations/{id}", b.requireBearer(b.deleteLocation))

	handle(fasthttp.MethodGet, "/cameras/", b.requireBearer(b.listCameras))
	// "connect" shares the {id} slot so the tree holds no static/param clash.
	handle(fasthttp.MethodPost, "/cameras/{id}", b.requireBearer(b.cameraAction))
	handle(fasthttp.MethodGet, "/cameras/{id}/status", b.requireBearer(b.cameraStatus))
	handle(fasthttp.MethodPost, "/cameras/{id}/analyze", b.requireBearer(b.analyzeCamera))

	handle(fasthttp.MethodGet, "/employees/", b.requireBearer(b.listEmployees))
	handle(fasthttp.MethodGet, "/employees/{id}", b.requireBearer(b.getEmployee))

	handle(fasthttp.MethodGet, "/analytics/locations/{id}", b.requireBearer(b.locationAnalytics))
	handle(fasthttp.MethodGet, "/analytics/locations/{id}/risk", b.requireBearer(b.locationRisk))
	return r
}

func (b *Backend) track(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := strings.TrimPrefix(string(ctx.Path()), prefix+"/")
		b.mu.Lock()
		b.calls[path]++
		b.lastAuth[path] = string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
		b.mu.Unlock()
		next(ctx)
	}
}

// requireBearer validates the HS256 credential and stores its subject on
// the request.
func (b *Backend) requireBearer(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			unauthorized(ctx, "Not authenticated")
			return
		}

		b.mu.Lock()
		secret := b.secretLocked()
		b.mu.Unlock()

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !token.Valid {
			unauthorized(ctx, DetailInvalidToken)
			return
		}
		username, _ := claims["sub"].(string)

		b.mu.Lock()
		_, known := b.accounts[username]
		b.mu.Unlock()
		if !known {
			unauthorized(ctx, DetailInvalidToken)
			return
		}

		ctx.SetUserValue(userValueUsername, username)
		next(ctx)
	}
}

func (b *Backend) login(ctx *fasthttp.RequestCtx) {
	if !strings.HasPrefix(string(ctx.Request.Header.ContentType()), "application/x-www-form-urlencoded") {
		detail(ctx, http.StatusUnprocessableEntity, "login expects a form body")
		return
	}
	username := string(ctx.PostArgs().Peek(transport.FieldUsername))
	password := string(ctx.PostArgs().Peek(transport.FieldPassword))

	b.mu.Lock()
	acc, ok := b.accounts[username]
	var token string
	if ok && acc.password == password {
		token = b.issueLocked(username)
	}
	b.mu.Unlock()

	if token == "" {
		unauthorized(ctx, DetailBadCredentials)
		return
	}
	writeJSON(ctx, http.StatusOK, transport.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) register(ctx *fasthttp.RequestCtx) {
	var reg domain.Registration
	if err := json.Unmarshal(ctx.PostBody(), &reg); err != nil || reg.Username == "" || reg.Password == "" {
		detail(ctx, http.StatusUnprocessableEntity, "invalid registration")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, taken := b.accounts[reg.Username]; taken {
		detail(ctx, http.StatusBadRequest, DetailUsernameTaken)
		return
	}
	identity := domain.Identity{
		ID:       int64(len(b.accounts) + 1),
		Username: reg.Username,
		Email:    reg.Email,
		FullName: reg.FullName,
		Role:     reg.Role,
	}
	b.accounts[reg.Username] = account{password: reg.Password, identity: identity}
	writeJSON(ctx, http.StatusOK, identity)
}

func (b *Backend) me(ctx *fasthttp.RequestCtx) {
	username, _ := ctx.UserValue(userValueUsername).(string)
	b.mu.Lock()
	acc := b.accounts[username]
	b.mu.Unlock()
	writeJSON(ctx, http.StatusOK, acc.identity)
}

func (b *Backend) listLocations(ctx *fasthttp.RequestCtx) {
	b.mu.Lock()
	out := make([]domain.Location, 0, len(b.locations))
	for id := int64(0); id < b.nextID; id++ {
		if loc, ok := b.locations[id]; ok {
			out = append(out, loc)
		}
	}
	b.mu.Unlock()
	writeJSON(ctx, http.StatusOK, out)
}

func (b *Backend) getLocation(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	loc, found := b.Location(id)
	if !found {
		detail(ctx, http.StatusNotFound, DetailNotFound)
		return
	}
	writeJSON(ctx, http.StatusOK, loc)
}

func (b *Backend) createLocation(ctx *fasthttp.RequestCtx) {
	var in domain.LocationInput
	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		detail(ctx, http.StatusUnprocessableEntity, "invalid location")
		return
	}
	if err := in.ValidateCreate(); err != nil {
		detail(ctx, http.StatusUnprocessableEntity, err.Error())
		return
	}
	loc := applyLocation(domain.Location{IsActive: true, CreatedAt: domain.Timestamp{Time: time.Now().UTC()}}, in)
	writeJSON(ctx, http.StatusOK, b.AddLocation(loc))
}

func (b *Backend) updateLocation(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var in domain.LocationInput
	if err := json.Unmarshal(ctx.PostBody(), &in); err != nil {
		detail(ctx, http.StatusUnprocessableEntity, "invalid location")
		return
	}

	b.mu.Lock()
	loc, found := b.locations[id]
	if found {
		loc = applyLocation(loc, in)
		loc.UpdatedAt = domain.Timestamp{Time: time.Now().UTC()}
		b.locations[id] = loc
	}
	b.mu.Unlock()

	if !found {
		detail(ctx, http.StatusNotFound, DetailNotFound)
		return
	}
	writeJSON(ctx, http.StatusOK, loc)
}

func (b *Backend) deleteLocation(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	b.mu.Lock()
	_, found := b.locations[id]
	delete(b.locations, id)
	b.mu.Unlock()

	if !found {
		detail(ctx, http.StatusNotFound, DetailNotFound)
		return
	}
	writeJSON(ctx, http.StatusOK, map[string]string{"message": "Location deleted"})
}

func (b *Backend) listCameras(ctx *fasthttp.RequestCtx) {
	filter := queryID(ctx, "location_id")
	b.mu.Lock()
	out := make([]domain.Camera, 0, len(b.cameras))
	for _, c := range b.cameras {
		if filter == 0 || c.LocationID == filter {
			out = append(out, c)
		}
	}
	b.mu.Unlock()
	writeJSON(ctx, http.StatusOK, out)
}

func (b *Backend) cameraStatus(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	writeJSON(ctx, http.StatusOK, map[string]any{"camera_id": id, "online": true})
}

func (b *Backend) cameraAction(ctx *fasthttp.RequestCtx) {
	if ctx.UserValue("id") != "connect" {
		detail(ctx, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	b.connectCamera(ctx)
}

func (b *Backend) connectCamera(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	ip := string(args.Peek("ip_address"))
	if ip == "" {
		detail(ctx, http.StatusUnprocessableEntity, "ip_address is required")
		return
	}
	port, _ := strconv.Atoi(string(args.Peek("port")))
	writeJSON(ctx, http.StatusOK, map[string]any{
		"ip_address": ip,
		"port":       port,
		"username":   string(args.Peek("username")),
		"connected":  true,
	})
}

func (b *Backend) analyzeCamera(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	duration := queryID(ctx, "duration")
	if duration == 0 {
		duration = 10
	}
	writeJSON(ctx, http.StatusOK, map[string]any{"camera_id": id, "duration": duration, "people_count": 3})
}

func (b *Backend) listEmployees(ctx *fasthttp.RequestCtx) {
	filter := queryID(ctx, "location_id")
	b.mu.Lock()
	out := make([]domain.Employee, 0, len(b.employees))
	for _, e := range b.employees {
		if filter == 0 || e.LocationID == filter {
			out = append(out, e)
		}
	}
	b.mu.Unlock()
	writeJSON(ctx, http.StatusOK, out)
}

func (b *Backend) getEmployee(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.employees {
		if e.ID == id {
			writeJSON(ctx, http.StatusOK, e)
			return
		}
	}
	detail(ctx, http.StatusNotFound, DetailNotFound)
}

func (b *Backend) locationAnalytics(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	b.mu.Lock()
	rows := b.analytics[id]
	b.mu.Unlock()
	if rows == nil {
		rows = []domain.Analytics{}
	}
	writeJSON(ctx, http.StatusOK, rows)
}

func (b *Backend) locationRisk(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	b.mu.Lock()
	score, found := b.risk[id]
	b.mu.Unlock()
	if !found {
		detail(ctx, http.StatusNotFound, "No risk score found")
		return
	}
	writeJSON(ctx, http.StatusOK, score)
}

func applyLocation(loc domain.Location, in domain.LocationInput) domain.Location {
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Address != nil {
		loc.Address = *in.Address
	}
	if in.LocationType != nil {
		loc.LocationType = *in.LocationType
	}
	if in.TaxID != nil {
		loc.TaxID = *in.TaxID
	}
	if in.Latitude != nil {
		lat := *in.Latitude
		loc.Latitude = &lat
	}
	if in.Longitude != nil {
		lng := *in.Longitude
		loc.Longitude = &lng
	}
	if in.IsActive != nil {
		loc.IsActive = *in.IsActive
	}
	return loc
}

func pathID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		detail(ctx, http.StatusUnprocessableEntity, "invalid id")
		return 0, false
	}
	return id, true
}

func queryID(ctx *fasthttp.RequestCtx, key string) int64 {
	id, _ := strconv.ParseInt(string(ctx.QueryArgs().Peek(key)), 10, 64)
	return id
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	ctx.Response.Header.Set("WWW-Authenticate", "Bearer")
	detail(ctx, http.StatusUnauthorized, msg)
}

func detail(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"detail": msg})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, _ := json.Marshal(payload)
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
