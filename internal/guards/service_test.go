package guards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/httpx"
)

type mockRepo struct {
	byID   map[int64]*Guard
	nextID int64
}

func newMockRepo(gs ...*Guard) *mockRepo {
	m := &mockRepo{byID: map[int64]*Guard{}, nextID: 1}
	for _, g := range gs {
		m.byID[g.ID] = g
		if g.ID >= m.nextID {
			m.nextID = g.ID + 1
		}
	}
	return m
}

func (m *mockRepo) FindByID(_ context.Context, id int64) (*Guard, error) {
	g, ok := m.byID[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *mockRepo) FindByUserID(_ context.Context, userID int64) (*Guard, error) {
	for _, g := range m.byID {
		if g.UserID == userID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *mockRepo) FindIDByUserID(ctx context.Context, userID int64) (int64, error) {
	g, err := m.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return g.ID, nil
}

func (m *mockRepo) List(_ context.Context, companyID int64, _, _ int) ([]Guard, int, error) {
	var out []Guard
	for _, g := range m.byID {
		if g.CompanyID == companyID {
			out = append(out, *g)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Create(_ context.Context, g Guard) (*Guard, error) {
	for _, existing := range m.byID {
		if existing.UserID == g.UserID {
			return nil, httpx.ErrDuplicate
		}
	}
	g.ID = m.nextID
	m.nextID++
	m.byID[g.ID] = &g
	cp := g
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, name, phone string) (*Guard, error) {
	g, ok := m.byID[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	g.Name = name
	g.Phone = phone
	cp := *g
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestGetScopedToCompany(t *testing.T) {
	svc := NewService(newMockRepo(&Guard{ID: 1, UserID: 7, CompanyID: 3, Name: "Jordan"}))

	g, err := svc.Get(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", g.Name)

	_, err = svc.Get(context.Background(), 1, 5)
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	// Zero scope means unrestricted.
	_, err = svc.Get(context.Background(), 1, 0)
	assert.NoError(t, err)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Create(context.Background(), Guard{UserID: 7, CompanyID: 3})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Guard{UserID: 7, Name: "Jordan"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	g, err := svc.Create(context.Background(), Guard{UserID: 7, CompanyID: 3, Name: "Jordan"})
	require.NoError(t, err)
	assert.NotZero(t, g.ID)
}

func TestCreateDuplicateUser(t *testing.T) {
	svc := NewService(newMockRepo(&Guard{ID: 1, UserID: 7, CompanyID: 3, Name: "Jordan"}))

	_, err := svc.Create(context.Background(), Guard{UserID: 7, CompanyID: 3, Name: "Jordan Again"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestListRequiresCompany(t *testing.T) {
	svc := NewService(newMockRepo())

	_, _, err := svc.List(context.Background(), 0, 10, 0)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateAndDeleteHonorScope(t *testing.T) {
	repo := newMockRepo(&Guard{ID: 1, UserID: 7, CompanyID: 3, Name: "Jordan"})
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), 1, 5, "New Name", "")
	assert.ErrorIs(t, err, httpx.ErrNotFound)

	updated, err := svc.Update(context.Background(), 1, 3, "New Name", "+1-555-0101")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 5), httpx.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), 1, 3))
	_, err = svc.Get(context.Background(), 1, 0)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
