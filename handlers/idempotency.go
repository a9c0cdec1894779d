package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdempotencyStoreType selects where used idempotency keys are kept.
type IdempotencyStoreType int

const (
	IdempotencyStoreTypeLocal IdempotencyStoreType = iota
	IdempotencyStoreTypeShared
	IdempotencyStoreTypeRedis
)

func (ist IdempotencyStoreType) String() string {
	return [...]string{"local", "shared", "redis"}[ist]
}

type IdempotencyHandlerOptions struct {
	IgnorePaths []string
	Expiry      time.Duration
}

// IdempotencyStore records used keys until they expire.
type IdempotencyStore interface {
	Get(key string) (bool, error)
	Set(key string, expiry time.Duration) error
}

// IdempotencyHandler rejects a repeated POST carrying an already-seen
// Idempotency-Key. Non-POST requests and ignored path prefixes pass
// straight through.
func IdempotencyHandler(h http.Handler, opts IdempotencyHandlerOptions, store IdempotencyStore) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			h.ServeHTTP(rw, r)
			return
		}

		for _, path := range opts.IgnorePaths {
			if strings.HasPrefix(r.URL.Path, path) {
				h.ServeHTTP(rw, r)
				return
			}
		}

		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			http.Error(rw, "Idempotency-Key header not found", http.StatusBadRequest)
			return
		}

		seen, err := store.Get(key)
		if err != nil {
			log.
				WithFields(log.Fields{"error": err, "key": key}).
				Warn("Could not read idempotency key")
			http.Error(rw, "Error while reading idempotency key", http.StatusInternalServerError)
			return
		}

		if seen {
			http.Error(rw, fmt.Sprintf("Idempotency-Key conflict, key: %s", key), http.StatusConflict)
			return
		}

		if err := store.Set(key, opts.Expiry); err != nil {
			log.
				WithFields(log.Fields{"error": err, "key": key}).
				Warn("Could not record idempotency key")
			http.Error(rw, "Error while saving used idempotency key", http.StatusInternalServerError)
			return
		}

		h.ServeHTTP(rw, r)
	})
}

// IdempotencyStoreRedis keeps keys in Redis, separate from the app
// database.
type IdempotencyStoreRedis struct {
	conn   redis.Conn
	prefix string
}

func NewIdempotencyStoreRedis(c redis.Conn) *IdempotencyStoreRedis {
	return &IdempotencyStoreRedis{conn: c, prefix: "idempotencykey"}
}

func (r *IdempotencyStoreRedis) Get(key string) (bool, error) {
	return redis.Bool(r.conn.Do("EXISTS", r.prefix+":"+key))
}

func (r *IdempotencyStoreRedis) Set(key string, expiry time.Duration) error {
	res, err := r.conn.Do("PSETEX", r.prefix+":"+key, int(expiry.Milliseconds()), 1)
	if err != nil {
		return err
	}
	if res != "OK" {
		return fmt.Errorf("failed to set key: %v", res)
	}
	return nil
}

// IdempotencyStoreGorm keeps keys in the shared SQL database. Usable
// with multiple API instances behind one database.
type IdempotencyStoreGorm struct {
	db *gorm.DB
}

type idempotencyKeyRow struct {
	Key        string    `gorm:"column:key;primary_key"`
	ExpiryDate time.Time `gorm:"column:expiry_date"`
}

func (idempotencyKeyRow) TableName() string {
	return "idempotency_keys"
}

func NewIdempotencyStoreGorm(db *gorm.DB) *IdempotencyStoreGorm {
	db.AutoMigrate(&idempotencyKeyRow{})
	return &IdempotencyStoreGorm{db: db}
}

func (g *IdempotencyStoreGorm) Get(key string) (bool, error) {
	row := idempotencyKeyRow{}
	err := g.db.First(&row, "key = ? AND expiry_date > ?", key, time.Now()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (g *IdempotencyStoreGorm) Set(key string, expiry time.Duration) error {
	// Reusing an expired key refreshes its expiry instead of conflicting.
	return g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"expiry_date"}),
	}).Create(&idempotencyKeyRow{Key: key, ExpiryDate: time.Now().Add(expiry)}).Error
}

// Prune deletes expired keys.
func (g *IdempotencyStoreGorm) Prune() error {
	return g.db.Delete(idempotencyKeyRow{}, "expiry_date < ?", time.Now()).Error
}

// IdempotencyStoreLocal is an in-memory store for single-instance
// deployments and tests.
type IdempotencyStoreLocal struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

func NewIdempotencyStoreLocal() *IdempotencyStoreLocal {
	return &IdempotencyStoreLocal{keys: make(map[string]time.Time)}
}

func (m *IdempotencyStoreLocal) Get(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.keys[key]
	if !ok {
		return false, nil
	}

	if time.Now().Before(expiry) {
		return true, nil
	}

	delete(m.keys, key)
	return false, nil
}

func (m *IdempotencyStoreLocal) Set(key string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = time.Now().Add(expiry)
	return nil
}
