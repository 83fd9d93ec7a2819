package auth

// MockStore is an in-memory auth store for testing.
type MockStore struct {
	tokens map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{tokens: make(map[string]string)}
}

func (m *MockStore) SetToken(account string, token string) error {
	m.tokens[account] = token
	return nil
}

func (m *MockStore) GetToken(account string) (string, error) {
	token, ok := m.tokens[account]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (m *MockStore) DeleteToken(account string) error {
	if _, ok := m.tokens[account]; !ok {
		return ErrTokenNotFound
	}
	delete(m.tokens, account)
	return nil
}
