package testhelpers

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/internal/detector"
	"github.com/pageza/pantrychef/backend/internal/model"
)

// TestPassword is the plain-text password of users made by CreateUser
const TestPassword = "correct-horse-battery"

// CreateUser inserts a user whose password is TestPassword
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateRecipe inserts a recipe with the given NER tokens
func CreateRecipe(t *testing.T, db *gorm.DB, title string, ner ...string) *model.Recipe {
	t.Helper()
	recipe := &model.Recipe{
		Title:       title,
		Ingredients: model.JSONBStringArray(ner),
		Directions:  model.JSONBStringArray{"Mix.", "Serve."},
		Link:        "www.example.com/" + uuid.NewString(),
		Source:      "Gathered",
		NER:         model.JSONBStringArray(ner),
	}
	require.NoError(t, db.Create(recipe).Error)
	return recipe
}

// MockDetector is a testify mock of detector.Detector
type MockDetector struct {
	mock.Mock
}

func (m *MockDetector) Detect(ctx context.Context, image []byte, filename string) ([]detector.Detection, error) {
	args := m.Called(ctx, image, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]detector.Detection), args.Error(1)
}

// MemoryArchive records uploads in memory
type MemoryArchive struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error
}

func (a *MemoryArchive) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	if a.Objects == nil {
		a.Objects = make(map[string][]byte)
	}
	a.Objects[key] = data
	return nil
}

// Keys returns the stored object keys
func (a *MemoryArchive) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := make([]string, 0, len(a.Objects))
	for k := range a.Objects {
		keys = append(keys, k)
	}
	return keys
}
