package authgate_test

import (
	"context"
	"io"
	"mime/multipart"
	"sync"
	"time"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/reforzo/go-authgate"
	"github.com/stretchr/testify/mock"
)

// fakeSessionStore scripts the pull path and lets tests drive the push
// path by emitting events to whatever listeners are registered.
type fakeSessionStore struct {
	mu             sync.Mutex
	listeners      map[int]func(authgate.SessionEvent)
	nextID         int
	pull           func(ctx context.Context) (*authgate.Session, error)
	signOutErr     error
	echoSignOut    bool
	pullCalls      int
	subscribeCalls int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{listeners: map[int]func(authgate.SessionEvent){}}
}

func (f *fakeSessionStore) CurrentSession(ctx context.Context) (*authgate.Session, error) {
	f.mu.Lock()
	f.pullCalls++
	pull := f.pull
	f.mu.Unlock()

	if pull == nil {
		return nil, nil
	}
	return pull(ctx)
}

func (f *fakeSessionStore) OnSessionChange(fn func(authgate.SessionEvent)) authgate.Unsubscribe {
	f.mu.Lock()
	f.subscribeCalls++
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeSessionStore) SignOut(ctx context.Context) error {
	f.mu.Lock()
	err := f.signOutErr
	echo := f.echoSignOut
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if echo {
		f.Emit(authgate.SessionEvent{Type: authgate.SessionSignedOut})
	}
	return nil
}

func (f *fakeSessionStore) Emit(ev authgate.SessionEvent) {
	f.mu.Lock()
	fns := make([]func(authgate.SessionEvent), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (f *fakeSessionStore) ListenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// fakeRoleStore dispatches to a per-test function and counts queries.
type fakeRoleStore struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, userID uuid.UUID) ([]string, error)
}

func (f *fakeRoleStore) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	f.calls++
	fn := f.fn
	f.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, userID)
}

func (f *fakeRoleStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// MockProfileStore implements authgate.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*authgate.Profile, error) {
	args := m.Called(ctx, userID)
	var profile *authgate.Profile
	if v := args.Get(0); v != nil {
		profile = v.(*authgate.Profile)
	}
	return profile, args.Error(1)
}

func (m *MockProfileStore) UpsertProfile(ctx context.Context, userID uuid.UUID, fields authgate.ProfileFields) (*authgate.Profile, error) {
	args := m.Called(ctx, userID, fields)
	var profile *authgate.Profile
	if v := args.Get(0); v != nil {
		profile = v.(*authgate.Profile)
	}
	return profile, args.Error(1)
}

// captureSink records activity events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []authgate.ActivityEvent
}

func (s *captureSink) Record(ctx context.Context, event authgate.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) recorded() []authgate.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]authgate.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// MockContext implements router.Context for route-guard tests.
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) QueryValues(key string) []string {
	args := m.Called(key)
	vals, _ := args.Get(0).([]string)
	return vals
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) LocalsMerge(key any, value map[string]any) map[string]any {
	args := m.Called(key, value)
	merged, _ := args.Get(0).(map[string]any)
	return merged
}

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) {
	args := m.Called(key)
	header, _ := args.Get(0).(*multipart.FileHeader)
	return header, args.Error(1)
}

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) IP() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) SendStatus(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) SendStream(r io.Reader) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockContext) RouteName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) RouteParams() map[string]string {
	args := m.Called()
	params, _ := args.Get(0).(map[string]string)
	return params
}

func testUser() *authgate.User {
	return &authgate.User{
		ID:    uuid.New(),
		Email: "user@example.com",
	}
}

func testSession(user *authgate.User) *authgate.Session {
	now := time.Now()
	expires := now.Add(time.Hour)
	return &authgate.Session{
		Token:     "token-" + user.ID.String(),
		User:      user,
		IssuedAt:  &now,
		ExpiresAt: &expires,
	}
}
