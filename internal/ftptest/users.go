package ftptest

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// UserStore holds the accounts the test server accepts.
type UserStore struct {
	users map[string][]byte
	mutex sync.RWMutex
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string][]byte)}
}

// AddUser registers username with a bcrypt hash of password.
func (us *UserStore) AddUser(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	us.mutex.Lock()
	defer us.mutex.Unlock()
	if _, exists := us.users[username]; exists {
		return fmt.Errorf("user '%s' already exists", username)
	}
	us.users[username] = hash
	return nil
}

// Authenticate reports whether password matches the stored hash.
func (us *UserStore) Authenticate(username, password string) bool {
	us.mutex.RLock()
	hash, exists := us.users[username]
	us.mutex.RUnlock()
	if !exists {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
