package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joy-dx/storefront/dto"
)

// ---- fake caller ----

type fakeCaller struct {
	mu    sync.Mutex
	gets  map[string]response
	posts map[string]response

	getPaths      []string
	postPaths     []string
	hooklessPaths []string
}

type response struct {
	resp dto.Response
	err  error
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		gets:  map[string]response{},
		posts: map[string]response{},
	}
}

func (f *fakeCaller) Get(ctx context.Context, path string, withRetry bool) (dto.Response, error) {
	f.mu.Lock()
	f.getPaths = append(f.getPaths, path)
	out := f.gets[path]
	f.mu.Unlock()
	return out.resp, out.err
}

func (f *fakeCaller) Post(ctx context.Context, path string, payload map[string]interface{}, withRetry bool) (dto.Response, error) {
	f.mu.Lock()
	f.postPaths = append(f.postPaths, path)
	out := f.posts[path]
	f.mu.Unlock()
	return out.resp, out.err
}

func (f *fakeCaller) PostWithoutAuthHooks(ctx context.Context, path string, payload map[string]interface{}) (dto.Response, error) {
	f.mu.Lock()
	f.postPaths = append(f.postPaths, path)
	f.hooklessPaths = append(f.hooklessPaths, path)
	out := f.posts[path]
	f.mu.Unlock()
	return out.resp, out.err
}

func (f *fakeCaller) postCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.postPaths {
		if p == path {
			n++
		}
	}
	return n
}

// ---- fake configurer ----

type fakeConfigurer struct {
	onUnauthorized func()
	onNeedsRefresh func(ctx context.Context) error
	cleared        int
	configured     int
}

func (f *fakeConfigurer) Configure(onUnauthorized func(), onNeedsRefresh func(ctx context.Context) error) {
	f.configured++
	f.onUnauthorized = onUnauthorized
	f.onNeedsRefresh = onNeedsRefresh
}

func (f *fakeConfigurer) ClearSession() {
	f.cleared++
}

// ---- tests ----

func TestNew_RegistersHooks(t *testing.T) {
	client := &fakeConfigurer{}
	c := New(newFakeCaller(), client, nil)

	require.Equal(t, 1, client.configured)
	require.NotNil(t, client.onUnauthorized)
	require.NotNil(t, client.onNeedsRefresh)
	require.Equal(t, StatusBooting, c.Status())
	require.False(t, c.IsInitialized())
}

func TestBootstrap_RestoresExistingSession(t *testing.T) {
	caller := newFakeCaller()
	caller.gets["/auth/me"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1","email":"a@b.com"}}`),
	}}

	c := New(caller, &fakeConfigurer{}, nil)
	c.Bootstrap(context.Background())

	require.True(t, c.IsInitialized())
	require.True(t, c.IsAuthenticated())
	require.Equal(t, "a@b.com", c.User().StringField("email"))
}

func TestBootstrap_FailedProbeIsBenign(t *testing.T) {
	caller := newFakeCaller()
	caller.gets["/auth/me"] = response{err: dto.ErrorFromResponse(dto.Response{StatusCode: 401})}

	c := New(caller, &fakeConfigurer{}, nil)
	c.Bootstrap(context.Background())

	require.True(t, c.IsInitialized())
	require.False(t, c.IsAuthenticated())
	require.Nil(t, c.User())
}

func TestBootstrap_NullUserEnvelopeIsAnonymous(t *testing.T) {
	caller := newFakeCaller()
	caller.gets["/auth/me"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":null}`),
	}}

	c := New(caller, &fakeConfigurer{}, nil)
	c.Bootstrap(context.Background())

	require.True(t, c.IsInitialized())
	require.False(t, c.IsAuthenticated())
	require.Nil(t, c.User())
}

func TestBootstrap_RunsExactlyOnce(t *testing.T) {
	caller := newFakeCaller()
	caller.gets["/auth/me"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1"}}`),
	}}

	c := New(caller, &fakeConfigurer{}, nil)
	c.Bootstrap(context.Background())
	c.Bootstrap(context.Background())

	require.Len(t, caller.getPaths, 1)
}

func TestLogin_Golden(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		password   string
		response   response
		wantErr    bool
		wantStatus Status
	}{
		{
			name:     "success",
			email:    "a@b.com",
			password: "pw",
			response: response{resp: dto.Response{
				StatusCode: 200,
				Body:       []byte(`{"user":{"id":"u1","email":"a@b.com"}}`),
			}},
			wantStatus: StatusAuthenticated,
		},
		{
			name:       "rejected credentials",
			email:      "a@b.com",
			password:   "wrong",
			response:   response{err: dto.ErrorFromResponse(dto.Response{StatusCode: 401, Body: []byte(`{"message":"bad credentials"}`)})},
			wantErr:    true,
			wantStatus: StatusUnauthenticated,
		},
		{
			name:       "missing credentials never hit the wire",
			email:      "",
			password:   "pw",
			wantErr:    true,
			wantStatus: StatusBooting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := newFakeCaller()
			caller.posts["/auth/login"] = tt.response

			c := New(caller, &fakeConfigurer{}, nil)
			user, err := c.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.Equal(t, "u1", user.StringField("id"))
			}
			require.Equal(t, tt.wantStatus, c.Status())

			if tt.email == "" {
				require.Empty(t, caller.postPaths)
				info, ok := dto.AsErrorInfo(err)
				require.True(t, ok)
				require.Equal(t, dto.ErrKindValidation, info.Kind)
			}
		})
	}
}

func TestLogin_SurvivesUnrelatedServerError(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1","email":"a@b.com"}}`),
	}}
	caller.gets["/products"] = response{err: dto.ErrorFromResponse(dto.Response{
		StatusCode: 500,
		Body:       []byte(`{"message":"boom"}`),
	})}

	c := New(caller, &fakeConfigurer{}, nil)
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	_, err = caller.Get(context.Background(), "/products", false)
	require.Error(t, err)

	require.Equal(t, StatusAuthenticated, c.Status())
	require.Equal(t, "u1", c.User().StringField("id"))
}

func TestLogout_AlwaysTearsDownLocally(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1"}}`),
	}}
	caller.posts["/auth/logout"] = response{err: dto.NewNetworkError(nil)}

	client := &fakeConfigurer{}
	c := New(caller, client, nil)

	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.True(t, c.IsAuthenticated())

	// Server unreachable: logout still lands locally.
	err = c.Logout(context.Background())
	require.Error(t, err)
	require.False(t, c.IsAuthenticated())
	require.Nil(t, c.User())
	require.Equal(t, 1, client.cleared)
}

func TestRefresh_FailureClosesSession(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1"}}`),
	}}
	caller.posts["/auth/refresh"] = response{err: dto.ErrorFromResponse(dto.Response{StatusCode: 401})}

	client := &fakeConfigurer{}
	c := New(caller, client, nil)
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	err = c.Refresh(context.Background())
	require.Error(t, err)
	require.False(t, c.IsAuthenticated())
	require.Equal(t, 1, client.cleared)
}

func TestRefresh_SuccessKeepsSession(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1"}}`),
	}}
	caller.posts["/auth/refresh"] = response{resp: dto.Response{StatusCode: 200}}

	c := New(caller, &fakeConfigurer{}, nil)
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(context.Background()))
	require.True(t, c.IsAuthenticated())
	require.Equal(t, "u1", c.User().StringField("id"))
	// Renewal bypasses the transport's session hooks.
	require.Equal(t, []string{"/auth/refresh"}, caller.hooklessPaths)
}

func TestRefresh_SuccessUpdatesUserRecord(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1","role":"customer"}}`),
	}}
	caller.posts["/auth/refresh"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1","role":"admin"}}`),
	}}

	c := New(caller, &fakeConfigurer{}, nil)
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "customer", c.User().StringField("role"))

	require.NoError(t, c.Refresh(context.Background()))
	require.True(t, c.IsAuthenticated())
	require.Equal(t, "admin", c.User().StringField("role"))
}

func TestUnauthorizedHook_ForcesLogout(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1"}}`),
	}}

	client := &fakeConfigurer{}
	c := New(caller, client, nil)
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	client.onUnauthorized()
	require.False(t, c.IsAuthenticated())
	require.Equal(t, 1, client.cleared)
}

func TestRefreshHook_DelegatesToRefresh(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/refresh"] = response{resp: dto.Response{StatusCode: 200}}

	client := &fakeConfigurer{}
	New(caller, client, nil)

	require.NoError(t, client.onNeedsRefresh(context.Background()))
	require.Equal(t, 1, caller.postCount("/auth/refresh"))
}

func TestUpdateUser_ShallowMerge(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/login"] = response{resp: dto.Response{
		StatusCode: 200,
		Body:       []byte(`{"user":{"id":"u1","name":"Ada"}}`),
	}}

	c := New(caller, &fakeConfigurer{}, nil)
	before := c.User()
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Nil(t, before)

	snapshot := c.User()
	updated := c.UpdateUser(map[string]any{"name": "Ada L."})

	require.Equal(t, "Ada L.", updated.StringField("name"))
	require.Equal(t, "u1", updated.StringField("id"))
	// Earlier snapshots stay stable.
	require.Equal(t, "Ada", snapshot.StringField("name"))
}

func TestUpdateUser_IgnoredWhenLoggedOut(t *testing.T) {
	c := New(newFakeCaller(), &fakeConfigurer{}, nil)
	require.Nil(t, c.UpdateUser(map[string]any{"name": "x"}))
}

func TestRegister_EstablishesSession(t *testing.T) {
	caller := newFakeCaller()
	caller.posts["/auth/register"] = response{resp: dto.Response{
		StatusCode: 201,
		Body:       []byte(`{"user":{"id":"u2","email":"new@b.com"}}`),
	}}

	c := New(caller, &fakeConfigurer{}, nil)
	user, err := c.Register(context.Background(), map[string]interface{}{
		"email":    "new@b.com",
		"password": "pw",
	})

	require.NoError(t, err)
	require.Equal(t, "u2", user.StringField("id"))
	require.True(t, c.IsAuthenticated())
}
