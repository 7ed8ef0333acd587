// Package catalog indexes stored runs in SQLite so past solves and sweeps
// can be queried without walking the run directories.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/san-kum/propsim/internal/storage"
	"github.com/san-kum/propsim/internal/sweep"
)

var ErrNotFound = errors.New("catalog: run not found")

// Run is one solve or sweep.
type Run struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Kind      string    `json:"kind" gorm:"index"`
	Name      string    `json:"name" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`

	Blades   int     `json:"blades"`
	Diameter float64 `json:"diameter"`
	Velocity float64 `json:"velocity"`
	RPM      float64 `json:"rpm"`

	Thrust     float64 `json:"thrust"`
	Torque     float64 `json:"torque"`
	Efficiency float64 `json:"efficiency"` // peak efficiency for sweeps
	Points     int     `json:"points"`
	Failed     int     `json:"failed"` // failed elements, or points with failures
}

// SweepPoint is one operating point of a sweep run.
type SweepPoint struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	RunID      string  `json:"run_id" gorm:"index"`
	Seq        int     `json:"seq"`
	Velocity   float64 `json:"velocity"`
	RPM        float64 `json:"rpm"`
	J          float64 `json:"j"`
	CT         float64 `json:"ct"`
	CP         float64 `json:"cp"`
	Efficiency float64 `json:"efficiency"`
	Thrust     float64 `json:"thrust"`
	Torque     float64 `json:"torque"`
	Clean      bool    `json:"clean"`
}

// Catalog encapsulates the database operations.
type Catalog struct {
	db *gorm.DB
}

// Open connects to the database at path, creating the tables if needed.
// Use ":memory:" for a private in-memory catalog.
func Open(path string) (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&Run{}, &SweepPoint{}); err != nil {
		return nil, fmt.Errorf("catalog: migrate: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordSolve adds a stored single-point run.
func (c *Catalog) RecordSolve(meta *storage.RunMetadata) error {
	run := Run{
		ID:         meta.ID,
		Kind:       storage.KindSolve,
		Name:       meta.Name,
		CreatedAt:  meta.Timestamp,
		Blades:     meta.Blades,
		Diameter:   meta.Diameter,
		Velocity:   meta.Velocity,
		RPM:        meta.RPM,
		Thrust:     meta.Thrust,
		Torque:     meta.Torque,
		Efficiency: meta.Efficiency,
		Points:     1,
		Failed:     len(meta.Failed),
	}
	return c.db.Save(&run).Error
}

// RecordSweep adds a stored sweep and its points in one transaction.
func (c *Catalog) RecordSweep(meta *storage.RunMetadata, res *sweep.Result) error {
	run := Run{
		ID:         meta.ID,
		Kind:       storage.KindSweep,
		Name:       meta.Name,
		CreatedAt:  meta.Timestamp,
		Blades:     meta.Blades,
		Diameter:   meta.Diameter,
		Efficiency: res.Metrics["peak_efficiency"],
		Points:     len(res.Points),
	}
	points := make([]SweepPoint, len(res.Points))
	for i, p := range res.Points {
		if len(p.Failed) > 0 {
			run.Failed++
		}
		if p.Thrust > run.Thrust {
			run.Thrust = p.Thrust
		}
		points[i] = SweepPoint{
			RunID:      meta.ID,
			Seq:        i,
			Velocity:   p.Flow.Velocity,
			RPM:        p.Flow.RPM(),
			J:          p.J,
			CT:         p.CT,
			CP:         p.CP,
			Efficiency: p.Efficiency,
			Thrust:     p.Thrust,
			Torque:     p.Torque,
			Clean:      p.Clean(),
		}
	}

	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&run).Error; err != nil {
			return err
		}
		if err := tx.Where("run_id = ?", meta.ID).Delete(&SweepPoint{}).Error; err != nil {
			return err
		}
		if len(points) == 0 {
			return nil
		}
		return tx.Create(&points).Error
	})
}

// Recent returns the latest runs, newest first.
func (c *Catalog) Recent(limit int) ([]Run, error) {
	var runs []Run
	result := c.db.Order("created_at desc").Limit(limit).Find(&runs)
	return runs, result.Error
}

func (c *Catalog) Get(id string) (*Run, error) {
	var run Run
	err := c.db.First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Points returns the points of a sweep in sweep order.
func (c *Catalog) Points(runID string) ([]SweepPoint, error) {
	var points []SweepPoint
	err := c.db.Where("run_id = ?", runID).Order("seq asc").Find(&points).Error
	return points, err
}

// Best returns the clean sweep point with the highest efficiency across all
// sweeps of the named rotor.
func (c *Catalog) Best(name string) (*SweepPoint, error) {
	var point SweepPoint
	err := c.db.
		Joins("JOIN runs ON runs.id = sweep_points.run_id").
		Where("runs.name = ? AND sweep_points.clean = ?", name, true).
		Order("sweep_points.efficiency desc").
		First(&point).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no clean sweep points for %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &point, nil
}
