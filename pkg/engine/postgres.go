package engine

import (
	"fmt"
	"log"

	"github.com/goccy/go-json"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordRow stores one record of one collection of one scope.
type recordRow struct {
	Scope      string `gorm:"primaryKey;size:64"`
	Collection string `gorm:"primaryKey;size:64"`
	ID         string `gorm:"primaryKey;size:128"`
	Position   int    `gorm:"not null"`
	Body       string `gorm:"type:jsonb;not null"`
}

func (recordRow) TableName() string { return "portal_records" }

// PostgresPersistence keeps scopes in a Postgres table instead of files.
type PostgresPersistence struct {
	DB *gorm.DB
}

// OpenPostgres connects to dsn and migrates the records table.
func OpenPostgres(dsn string) (*PostgresPersistence, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewPostgresPersistence(db)
}

// NewPostgresPersistence wraps an open connection.
func NewPostgresPersistence(db *gorm.DB) (*PostgresPersistence, error) {
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("migrate records table: %w", err)
	}
	return &PostgresPersistence{DB: db}, nil
}

// SaveScope replaces every row of scope in one transaction.
func (p *PostgresPersistence) SaveScope(scope string, data map[string][]Record) error {
	rows, err := scopeRows(scope, data)
	if err != nil {
		return err
	}

	return p.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("scope = ?", scope).Delete(&recordRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

// LoadAll reads every scope back in collection order. Rows that do not decode
// are logged and skipped, so one bad row never hides the rest of its scope.
func (p *PostgresPersistence) LoadAll() (map[string]map[string][]Record, error) {
	var rows []recordRow
	if err := p.DB.Order("scope, collection, position").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rowScopes(rows), nil
}

func scopeRows(scope string, data map[string][]Record) ([]recordRow, error) {
	var rows []recordRow
	for collection, items := range data {
		for i, rec := range items {
			body, err := json.Marshal(rec)
			if err != nil {
				return nil, fmt.Errorf("encode %s/%s: %w", scope, collection, err)
			}
			rows = append(rows, recordRow{
				Scope:      scope,
				Collection: collection,
				ID:         RecordID(rec),
				Position:   i,
				Body:       string(body),
			})
		}
	}
	return rows, nil
}

// rowScopes groups rows into scopes. Rows must arrive ordered by position.
func rowScopes(rows []recordRow) map[string]map[string][]Record {
	allData := make(map[string]map[string][]Record)
	for _, row := range rows {
		var rec Record
		if err := json.Unmarshal([]byte(row.Body), &rec); err != nil {
			log.Printf("Warning: Could not decode record %s/%s/%s: %v", row.Scope, row.Collection, row.ID, err)
			continue
		}
		if allData[row.Scope] == nil {
			allData[row.Scope] = make(map[string][]Record)
		}
		allData[row.Scope][row.Collection] = append(allData[row.Scope][row.Collection], rec)
	}
	return allData
}
