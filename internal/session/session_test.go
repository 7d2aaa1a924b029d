package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/acquire/internal/domain/artifact"
	"github.com/zjrosen/acquire/internal/resolver"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Save(ctx context.Context, sessionID string, a artifact.ActiveArtifact) error {
	return m.Called(ctx, sessionID, a).Error(0)
}

func (m *mockRepository) List(ctx context.Context, sessionID string) ([]artifact.ActiveArtifact, error) {
	args := m.Called(ctx, sessionID)
	out, _ := args.Get(0).([]artifact.ActiveArtifact)
	return out, args.Error(1)
}

func (m *mockRepository) Clear(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *mockRepository) Close() error {
	return m.Called().Error(0)
}

func active(name, ver string) artifact.ActiveArtifact {
	return artifact.ActiveArtifact{Name: name, Version: ver, Source: "main", Handle: artifact.Handle{ID: name + ver}}
}

func TestNew_Defaults(t *testing.T) {
	s, w := New(Config{})
	require.NotEmpty(t, s.ID())
	require.NotNil(t, s.GlobalResolver())
	require.Zero(t, s.Len())
	require.False(t, s.Persistent())
	require.Same(t, s, w.Session())

	other, _ := New(Config{})
	require.NotEqual(t, s.ID(), other.ID())
}

func TestNew_KeepsConfig(t *testing.T) {
	global := resolver.New(time.Second)
	s, _ := New(Config{ID: "abc", GlobalResolver: global})
	require.Equal(t, "abc", s.ID())
	require.Same(t, global, s.GlobalResolver())
}

func TestPut_ReplacesByName(t *testing.T) {
	ctx := context.Background()
	s, w := New(Config{ID: "s1"})

	require.NoError(t, w.Put(ctx, active("foo", "1.0.0")))
	require.NoError(t, w.Put(ctx, active("bar", "2.0.0")))
	require.NoError(t, w.Put(ctx, active("foo", "1.1.0")))

	require.Equal(t, 2, s.Len())
	got, ok := s.Active("foo")
	require.True(t, ok)
	require.Equal(t, "1.1.0", got.Version)

	all := s.ActiveArtifacts()
	require.Equal(t, "bar", all[0].Name)
	require.Equal(t, "foo", all[1].Name)

	_, ok = s.Active("baz")
	require.False(t, ok)
}

func TestPut_EmptyName(t *testing.T) {
	_, w := New(Config{})
	require.Error(t, w.Put(context.Background(), artifact.ActiveArtifact{}))
}

func TestPut_PersistsFirst(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("Save", ctx, "s1", active("foo", "1.0.0")).Return(nil)
	repo.On("Save", ctx, "s1", active("bar", "1.0.0")).Return(errors.New("disk full"))

	s, w := New(Config{ID: "s1", Repository: repo})
	require.True(t, s.Persistent())

	require.NoError(t, w.Put(ctx, active("foo", "1.0.0")))
	err := w.Put(ctx, active("bar", "1.0.0"))
	require.ErrorContains(t, err, "disk full")

	require.Equal(t, 1, s.Len(), "failed save leaves memory untouched")
	repo.AssertExpectations(t)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("List", ctx, "s1").Return([]artifact.ActiveArtifact{active("foo", "1.0.0"), active("bar", "2.0.0")}, nil)

	s, w := New(Config{ID: "s1", Repository: repo})
	require.NoError(t, w.Load(ctx))
	require.Equal(t, 2, s.Len())
}

func TestLoad_Error(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("List", ctx, "s1").Return(nil, errors.New("locked"))

	_, w := New(Config{ID: "s1", Repository: repo})
	require.ErrorContains(t, w.Load(ctx), "load session s1")
}

func TestLoad_WithoutRepository(t *testing.T) {
	s, w := New(Config{})
	require.NoError(t, w.Load(context.Background()))
	require.Zero(t, s.Len())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepository)
	repo.On("Save", ctx, "s1", mock.Anything).Return(nil)
	repo.On("Clear", ctx, "s1").Return(nil)

	s, w := New(Config{ID: "s1", Repository: repo})
	require.NoError(t, w.Put(ctx, active("foo", "1.0.0")))
	require.NoError(t, w.Clear(ctx))
	require.Zero(t, s.Len())
	repo.AssertExpectations(t)
}
