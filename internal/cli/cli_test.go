package cli_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/cli"
	"github.com/nhle/plant-care/internal/credential"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	appsync "github.com/nhle/plant-care/internal/sync"
	"github.com/nhle/plant-care/internal/testutil"
)

type fakeProvider struct {
	signUps int
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	if password != "Secret1" {
		return nil, &auth.ProviderError{Code: "INVALID_PASSWORD"}
	}
	return &auth.Session{IDToken: "tok", User: auth.User{UID: "u1", Name: "Sam", Email: email}}, nil
}

func (f *fakeProvider) SignUp(_ context.Context, name, email, _, _ string) (*auth.Session, error) {
	f.signUps++
	return &auth.Session{IDToken: "tok", User: auth.User{UID: "u2", Name: name, Email: email}}, nil
}

type harness struct {
	env      *cli.Env
	fake     *testutil.FakeAPI
	provider *fakeProvider
	builds   int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := testutil.NewFakeAPI(t, testutil.SamplePlants()...)
	s := testutil.NewTestStore(t)
	creds := credential.NewStore(keyring.NewArrayKeyring(nil))
	sessions := auth.NewSessionStore(creds)
	client := api.NewClient(fake.URL(), api.WithToken(sessions.Token))
	provider := &fakeProvider{}

	return &harness{
		fake:     fake,
		provider: provider,
		env: &cli.Env{
			Config:      model.DefaultConfig(),
			ConfigPath:  filepath.Join(t.TempDir(), "config.yaml"),
			Logger:      zerolog.Nop(),
			Store:       s,
			Credentials: creds,
			Sessions:    sessions,
			API:         client,
			Provider:    provider,
			Tracker:     recent.New(s, recent.WithCapacity(3)),
			Poller:      appsync.New(client, s, appsync.Options{Logger: zerolog.Nop()}),
			Now:         func() time.Time { return time.Date(2024, time.January, 12, 9, 0, 0, 0, time.Local) },
		},
	}
}

func (h *harness) build(_ context.Context, _ cli.Options) (*cli.Env, error) {
	h.builds++
	return h.env, nil
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := cli.New(h.build)
	out := new(bytes.Buffer)
	c.SetOutput(out, new(bytes.Buffer))
	c.SetArgs(args)
	err := c.Execute(context.Background())
	return out.String(), err
}

func TestNext(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "next", "2024-01-10", "every", "3", "days")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-13\n", out)

	out, err = h.run(t, "next", "2024-01-10", "when dry")
	require.NoError(t, err)
	assert.Equal(t, "unknown\n", out)

	out, err = h.run(t, "next", "tuesday", "every 3 days")
	require.NoError(t, err)
	assert.Equal(t, "unknown\n", out)

	assert.Equal(t, 0, h.builds, "next needs no dependencies")

	_, err = h.run(t, "next", "2024-01-10")
	assert.Error(t, err)
}

func TestSyncAndDue(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "sync")
	require.NoError(t, err)
	assert.Equal(t, "Synced 4 plant(s), 4 new\n", out)

	out, err = h.run(t, "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Aloe Vera")
	assert.Contains(t, out, "(overdue)")
	assert.Contains(t, out, "Boston Fern")
	assert.NotContains(t, out, "Sweet Basil")

	out, err = h.run(t, "due", "--date", "2024-01-09")
	require.NoError(t, err)
	assert.Equal(t, "Nothing to water by 2024-01-09\n", out)

	_, err = h.run(t, "due", "--date", "soon")
	assert.ErrorContains(t, err, "invalid --date")

	_, err = h.run(t, "due", "--mine")
	assert.True(t, errors.Is(err, auth.ErrNotSignedIn))
}

func TestCheck(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "sync")
	require.NoError(t, err)

	out, err := h.run(t, "check", "--date", "2024-01-12")
	require.NoError(t, err)
	assert.Equal(t, "2 plant(s) due by 2024-01-12, 2 new notification(s)\n", out)

	out, err = h.run(t, "check", "--date", "2024-01-12")
	require.NoError(t, err)
	assert.Contains(t, out, "0 new notification(s)")
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "whoami")
	require.ErrorIs(t, err, auth.ErrNotSignedIn)

	_, err = h.run(t, "login", "--email", "sam@example.com", "--password", "wrong")
	assert.EqualError(t, err, "invalid email or password")

	out, err := h.run(t, "login", "--email", "sam@example.com", "--password", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Sam <sam@example.com>\n", out)

	out, err = h.run(t, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Sam <sam@example.com>\n", out)

	_, err = h.run(t, "logout")
	require.NoError(t, err)
	_, err = h.run(t, "whoami")
	assert.ErrorIs(t, err, auth.ErrNotSignedIn)
}

func TestRegisterChecksPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "register", "--name", "Kim", "--email", "kim@example.com", "--password", "weak")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)
	assert.Equal(t, 0, h.provider.signUps)

	out, err := h.run(t, "register", "--name", "Kim", "--email", "kim@example.com", "--password", "Str0ngPass")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as Kim <kim@example.com>\n", out)
	assert.Equal(t, 1, h.provider.signUps)
}

func TestRecent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	out, err := h.run(t, "recent")
	require.NoError(t, err)
	assert.Equal(t, "No recently viewed plants\n", out)

	for _, p := range testutil.SamplePlants()[:3] {
		_, err := h.env.Tracker.RecordView(ctx, p.ID, p)
		require.NoError(t, err)
	}

	out, err = h.run(t, "recent", "list")
	require.NoError(t, err)
	assert.Equal(t, "1. Aloe Vera (p3)\n2. Sweet Basil (p2)\n3. Boston Fern (p1)\n", out)

	out, err = h.run(t, "recent", "remove", "p2")
	require.NoError(t, err)
	assert.Equal(t, "2 recently viewed plant(s) left\n", out)

	out, err = h.run(t, "recent", "remove", "missing")
	require.NoError(t, err)
	assert.Equal(t, "2 recently viewed plant(s) left\n", out)

	_, err = h.run(t, "recent", "clear")
	require.NoError(t, err)
	items, err := h.env.Tracker.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "sync")
	require.NoError(t, err)
	_, err = h.run(t, "login", "--email", "sam@example.com", "--password", "Secret1")
	require.NoError(t, err)

	out, err := h.run(t, "export", "--mine")
	require.NoError(t, err)

	var doc struct {
		Owner  string        `yaml:"owner"`
		Plants []model.Plant `yaml:"plants"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "sam@example.com", doc.Owner)
	require.Len(t, doc.Plants, 2)
	assert.Equal(t, "Boston Fern", doc.Plants[0].PlantName)
	assert.Equal(t, "2024-01-12", doc.Plants[0].NextWateringDate)
	assert.Contains(t, out, "plant_name: Sweet Basil")

	path := filepath.Join(t.TempDir(), "plants.yaml")
	_, err = h.run(t, "export", "-o", path)
	require.NoError(t, err)
}

func TestBuildFailure(t *testing.T) {
	errLocked := errors.New("keyring locked")
	c := cli.New(func(context.Context, cli.Options) (*cli.Env, error) {
		return nil, errLocked
	})
	c.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	c.SetArgs([]string{"whoami"})

	err := c.Execute(context.Background())
	assert.ErrorIs(t, err, errLocked)
}
