package credential

import "context"

// MockStore provides customizable hooks for testing Store consumers.
type MockStore struct {
	PutFunc    func(ctx context.Context, userID, teamID, accessToken string) error
	GetFunc    func(ctx context.Context, userID string) (*Record, error)
	DeleteFunc func(ctx context.Context, userID string) (bool, error)
}

var _ Store = (*MockStore)(nil)

// Put calls PutFunc if set, otherwise returns nil
func (m *MockStore) Put(ctx context.Context, userID, teamID, accessToken string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, userID, teamID, accessToken)
	}
	return nil
}

// Get calls GetFunc if set, otherwise returns ErrNotFound
func (m *MockStore) Get(ctx context.Context, userID string) (*Record, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return nil, ErrNotFound
}

// Delete calls DeleteFunc if set, otherwise returns false, nil
func (m *MockStore) Delete(ctx context.Context, userID string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID)
	}
	return false, nil
}
