package database

import (
	"context"
	"time"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// MaxHistoryLimit caps journal reads.
const MaxHistoryLimit = 500

// JournalRepository handles database operations for the scan journal
type JournalRepository struct {
	db *Database
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *Database) *JournalRepository {
	return &JournalRepository{db: db}
}

// InitSchema performs auto-migration
func (r *JournalRepository) InitSchema() error {
	log := logging.WithComponent("database")
	log.Info("🔄 Starting database schema initialization...")

	if err := r.db.db.AutoMigrate(&models.ScanRecord{}); err != nil {
		return WrapDBError("InitSchema", err)
	}

	log.Info("✅ Database schema ready")
	return nil
}

// SaveScanRecord inserts one journal row
func (r *JournalRepository) SaveScanRecord(ctx context.Context, rec *models.ScanRecord) error {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	return WrapDBError("SaveScanRecord", r.db.db.WithContext(ctx).Create(rec).Error)
}

// GetRecentScans returns the newest journal rows first
func (r *JournalRepository) GetRecentScans(ctx context.Context, limit int) ([]models.ScanRecord, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, &ValidationError{Field: "limit", Reason: "must be between 1 and 500", Value: limit}
	}

	var records []models.ScanRecord
	err := r.db.db.WithContext(ctx).
		Order("recorded_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, WrapDBError("GetRecentScans", err)
	}
	return records, nil
}

// GetScan returns the journal rows written for one scan ID
func (r *JournalRepository) GetScan(ctx context.Context, scanID string) ([]models.ScanRecord, error) {
	var records []models.ScanRecord
	err := r.db.db.WithContext(ctx).
		Where("scan_id = ?", scanID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, WrapDBError("GetScan", err)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "scan", ID: scanID}
	}
	return records, nil
}
