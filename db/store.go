package db

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oxhq/codegraph/core"
	"github.com/oxhq/codegraph/models"
)

// Store is the extraction sink: it replaces a file's batch of nodes, edges,
// and references atomically, and answers the content-hash lookups the
// incremental sync uses to skip unchanged files.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStore wraps a connected database. A nil logger keeps it quiet.
func NewStore(gdb *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: gdb, log: log}
}

// FileHash returns the stored content hash for a path, or "" when the file
// has never been indexed.
func (s *Store) FileHash(path string) (string, error) {
	var file models.File
	err := s.db.Select("content_hash").Where("path = ?", path).First(&file).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("hash lookup for %s: %w", path, err)
	}
	return file.ContentHash, nil
}

// ReplaceFileBatch atomically swaps a file's previous batch for the new
// extraction result.
func (s *Store) ReplaceFileBatch(path, language, contentHash string, lineCount int, res core.ExtractionResult) error {
	nodes := make([]models.Node, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		nodes = append(nodes, models.NodeFromCore(n))
	}
	edges := make([]models.Edge, 0, len(res.Edges))
	for _, e := range res.Edges {
		edges = append(edges, models.EdgeFromCore(e, path))
	}
	refs := make([]models.Reference, 0, len(res.UnresolvedRefs))
	for _, r := range res.UnresolvedRefs {
		refs = append(refs, models.ReferenceFromCore(r, path))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteBatch(tx, path); err != nil {
			return err
		}

		file := models.File{
			Path:        path,
			Language:    language,
			ContentHash: contentHash,
			LineCount:   lineCount,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			UpdateAll: true,
		}).Create(&file).Error; err != nil {
			return fmt.Errorf("upsert file: %w", err)
		}

		if len(nodes) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(nodes, 200).Error; err != nil {
				return fmt.Errorf("insert nodes: %w", err)
			}
		}
		if len(edges) > 0 {
			if err := tx.CreateInBatches(edges, 500).Error; err != nil {
				return fmt.Errorf("insert edges: %w", err)
			}
		}
		if len(refs) > 0 {
			if err := tx.CreateInBatches(refs, 500).Error; err != nil {
				return fmt.Errorf("insert refs: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace batch for %s: %w", path, err)
	}

	s.log.Debug("batch replaced",
		zap.String("file", path),
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(edges)),
		zap.Int("refs", len(refs)))
	return nil
}

// DeleteFile removes a file and its batch after the file disappears from
// the source tree.
func (s *Store) DeleteFile(path string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteBatch(tx, path); err != nil {
			return err
		}
		return tx.Where("path = ?", path).Delete(&models.File{}).Error
	})
}

// Files lists every indexed file.
func (s *Store) Files() ([]models.File, error) {
	var files []models.File
	if err := s.db.Order("path").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// NodesForFile returns a file's node rows ordered by position.
func (s *Store) NodesForFile(path string) ([]models.Node, error) {
	var nodes []models.Node
	err := s.db.Where("file_path = ?", path).Order("start_line, start_column").Find(&nodes).Error
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// Counts reports table sizes for run summaries.
func (s *Store) Counts() (files, nodes, edges, refs int64, err error) {
	if err = s.db.Model(&models.File{}).Count(&files).Error; err != nil {
		return
	}
	if err = s.db.Model(&models.Node{}).Count(&nodes).Error; err != nil {
		return
	}
	if err = s.db.Model(&models.Edge{}).Count(&edges).Error; err != nil {
		return
	}
	err = s.db.Model(&models.Reference{}).Count(&refs).Error
	return
}

func deleteBatch(tx *gorm.DB, path string) error {
	for _, m := range []any{&models.Reference{}, &models.Edge{}, &models.Node{}} {
		if err := tx.Where("file_path = ?", path).Delete(m).Error; err != nil {
			name := strings.TrimPrefix(fmt.Sprintf("%T", m), "*models.")
			return fmt.Errorf("delete %s batch: %w", strings.ToLower(name), err)
		}
	}
	return nil
}
