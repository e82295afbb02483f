// Package jsondb provides a JSON-file implementation of the storage
// interface: the full account list and the current session are dumped
// wholesale to a single file on every mutation.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/patric-chuzhbe/internhub/internal/models"
	"github.com/patric-chuzhbe/internhub/internal/password"
)

// JSONDB is a file-backed account and session store. When the file name is
// empty the store lives purely in memory (see the memorystorage package).
type JSONDB struct {
	fileName string
	mu       sync.Mutex
	Cache    CacheStruct
	lastID   int64
}

// CacheStruct mirrors the persisted layout: the `users` and `currentUser`
// slots of the original portal's local storage.
type CacheStruct struct {
	Users       []*models.Account `json:"users"`
	CurrentUser *models.Account   `json:"currentUser,omitempty"`
}

// DemoAccounts returns the canonical portal accounts the store is seeded
// with, their passwords digested at call time.
func DemoAccounts() []*models.Account {
	adminDigest, _ := password.Hash("adminpassword")
	userDigest, _ := password.Hash("userpassword")

	return []*models.Account{
		{
			ID:                 1,
			Email:              "admin@example.com",
			SecretDigest:       adminDigest,
			Role:               models.RoleAdmin,
			AppliedInternships: []int64{},
		},
		{
			ID:                 2,
			Email:              "user@example.com",
			SecretDigest:       userDigest,
			Role:               models.RoleUser,
			AppliedInternships: []int64{1, 4},
		},
	}
}

// New loads the store from fileName. A missing file is initialized with the
// demo accounts; a malformed file degrades to the same seeded state instead
// of failing.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	// A missing, unreadable or malformed file degrades to the seeded default.
	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil || db.Cache.Users == nil {
		db.Cache = CacheStruct{Users: DemoAccounts()}
		if err := db.save(); err != nil {
			return nil, fmt.Errorf("error initializing the database file: %w", err)
		}
	}

	for _, account := range db.Cache.Users {
		if account.ID > db.lastID {
			db.lastID = account.ID
		}
	}

	return db, nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cache)
	if err != nil {
		return err
	}

	return nil
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

// save dumps the whole cache to disk. Callers must hold the mutex when the
// store is shared.
func (db *JSONDB) save() error {
	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}

// CreateAccount stores a new account under a fresh timestamp-derived id.
// The in-memory insert is rolled back when the persist fails, so either the
// account is both created and durable, or neither.
func (db *JSONDB) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.Cache.Users {
		if existing.Email == account.Email {
			return nil, models.ErrDuplicateEmail
		}
	}

	stored := account.Clone()
	stored.ID = db.nextID()
	if stored.AppliedInternships == nil {
		stored.AppliedInternships = []int64{}
	}

	db.Cache.Users = append(db.Cache.Users, stored)
	if err := db.save(); err != nil {
		db.Cache.Users = db.Cache.Users[:len(db.Cache.Users)-1]
		return nil, err
	}

	return stored.Clone(), nil
}

// FindAccountByEmail looks an account up by exact email match.
func (db *JSONDB) FindAccountByEmail(ctx context.Context, email string) (*models.Account, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, account := range db.Cache.Users {
		if account.Email == email {
			return account.Clone(), true, nil
		}
	}

	return nil, false, nil
}

// FindAccountByID looks an account up by id.
func (db *JSONDB) FindAccountByID(ctx context.Context, id int64) (*models.Account, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, account := range db.Cache.Users {
		if account.ID == id {
			return account.Clone(), true, nil
		}
	}

	return nil, false, nil
}

// UpdateAccount replaces the stored record with the matching id.
func (db *JSONDB) UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, existing := range db.Cache.Users {
		if existing.ID != account.ID {
			continue
		}

		stored := account.Clone()
		db.Cache.Users[i] = stored
		if err := db.save(); err != nil {
			db.Cache.Users[i] = existing
			return nil, err
		}

		return stored.Clone(), nil
	}

	return nil, models.ErrAccountNotFound
}

// CountAccounts returns the number of registered accounts.
func (db *JSONDB) CountAccounts(ctx context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return int64(len(db.Cache.Users)), nil
}

// CountApplications returns the total number of applications across accounts.
func (db *JSONDB) CountApplications(ctx context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var total int64
	for _, account := range db.Cache.Users {
		total += int64(len(account.AppliedInternships))
	}

	return total, nil
}

// SaveSession persists the account as the current session.
func (db *JSONDB) SaveSession(ctx context.Context, account *models.Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	previous := db.Cache.CurrentUser
	db.Cache.CurrentUser = account.Clone()
	if err := db.save(); err != nil {
		db.Cache.CurrentUser = previous
		return err
	}

	return nil
}

// LoadSession returns the persisted current session, if any.
func (db *JSONDB) LoadSession(ctx context.Context) (*models.Account, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.Cache.CurrentUser == nil {
		return nil, false, nil
	}

	return db.Cache.CurrentUser.Clone(), true, nil
}

// ClearSession empties the persisted session slot.
func (db *JSONDB) ClearSession(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	previous := db.Cache.CurrentUser
	db.Cache.CurrentUser = nil
	if err := db.save(); err != nil {
		db.Cache.CurrentUser = previous
		return err
	}

	return nil
}

// Ping reports storage health; a file store is always healthy.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the cache to disk one last time.
func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.save()
}

// nextID derives a unique account id from the current timestamp, bumped past
// the last known id. Callers must hold the mutex.
func (db *JSONDB) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= db.lastID {
		id = db.lastID + 1
	}
	db.lastID = id

	return id
}
