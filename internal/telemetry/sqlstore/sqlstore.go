// Package sqlstore persists telemetry samples to SQLite through gorm. Package
// telemetry and everything the engine imports must stay free of it.
package sqlstore

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cxd309/lifeflow-engine/internal/telemetry"
)

// DefaultBatchSize is how many samples are buffered before a write.
const DefaultBatchSize = 500

// Session is one drive.
type Session struct {
	ID        string `gorm:"primaryKey;size:36"`
	StartedAt time.Time
	Steps     int
	Source    string `gorm:"size:16"` // driver data source
}

// SampleRow is a persisted Sample.
type SampleRow struct {
	ID            uint   `gorm:"primaryKey"`
	SessionID     string `gorm:"index;size:36"`
	Frame         int
	Time          float64
	Speed         float64
	WaypointIndex int
	Progress      float64
	X             float64
	Z             float64
}

// Store persists samples to SQLite in batches. It is used from the game
// tick only and is not safe for concurrent use.
type Store struct {
	db      *gorm.DB
	session Session
	batch   int
	buf     []SampleRow
}

// Open opens (or creates) the SQLite database at path and starts a new
// session. An empty path uses an in-memory database.
func Open(path string, batch int, steps int, source string) (*Store, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        batch,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening telemetry db: %w", err)
	}
	if err := db.AutoMigrate(&Session{}, &SampleRow{}); err != nil {
		return nil, fmt.Errorf("migrating telemetry db: %w", err)
	}

	s := &Store{
		db:    db,
		batch: batch,
		session: Session{
			ID:        uuid.NewString(),
			StartedAt: time.Now().UTC(),
			Steps:     steps,
			Source:    source,
		},
	}
	if err := db.Create(&s.session).Error; err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return s, nil
}

var _ telemetry.Recorder = (*Store)(nil)

// SessionID returns the current session's id.
func (s *Store) SessionID() string { return s.session.ID }

// Record buffers a sample, writing the buffer once it reaches the batch size.
func (s *Store) Record(sample telemetry.Sample) error {
	s.buf = append(s.buf, SampleRow{
		SessionID:     s.session.ID,
		Frame:         sample.Frame,
		Time:          sample.Time,
		Speed:         sample.Speed,
		WaypointIndex: sample.WaypointIndex,
		Progress:      sample.Progress,
		X:             sample.X,
		Z:             sample.Z,
	})
	if len(s.buf) >= s.batch {
		return s.Flush()
	}
	return nil
}

// Flush writes any buffered samples.
func (s *Store) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	if err := s.db.CreateInBatches(s.buf, s.batch).Error; err != nil {
		return fmt.Errorf("writing %d samples: %w", len(s.buf), err)
	}
	s.buf = s.buf[:0]
	return nil
}

// Samples returns the persisted samples of session in frame order.
func (s *Store) Samples(session string) ([]telemetry.Sample, error) {
	var rows []SampleRow
	if err := s.db.Where("session_id = ?", session).Order("frame").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	out := make([]telemetry.Sample, len(rows))
	for i, r := range rows {
		out[i] = telemetry.Sample{
			Frame:         r.Frame,
			Time:          r.Time,
			Speed:         r.Speed,
			WaypointIndex: r.WaypointIndex,
			Progress:      r.Progress,
			X:             r.X,
			Z:             r.Z,
		}
	}
	return out, nil
}

// Sessions lists every recorded session, newest first.
func (s *Store) Sessions() ([]Session, error) {
	var out []Session
	if err := s.db.Order("started_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return out, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	flushErr := s.Flush()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	return flushErr
}
