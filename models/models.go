package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/oxhq/codegraph/core"
)

// File tracks one indexed source file and the content hash that drives
// incremental sync.
type File struct {
	Path        string `gorm:"primaryKey;type:varchar(512)"`
	Language    string `gorm:"type:varchar(50);not null"`
	ContentHash string `gorm:"type:varchar(64);not null"`
	LineCount   int

	IndexedAt time.Time `gorm:"autoUpdateTime"`
}

// Node is one symbol row. The id is the extractor's stable digest, so
// re-extracting an unchanged file overwrites rows in place.
type Node struct {
	ID            string `gorm:"primaryKey;type:varchar(96)"`
	Kind          string `gorm:"type:varchar(20);not null;index"`
	Name          string `gorm:"type:varchar(255);index"`
	QualifiedName string `gorm:"type:text"`
	FilePath      string `gorm:"type:varchar(512);index"`
	Language      string `gorm:"type:varchar(50)"`

	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int
	UpdatedAt   int64

	Visibility string `gorm:"type:varchar(10)"`
	IsExported bool
	IsAsync    bool
	IsStatic   bool
	IsAbstract bool

	Signature  string         `gorm:"type:text"`
	Docstring  string         `gorm:"type:text"`
	Decorators datatypes.JSON `gorm:"type:jsonb"`
}

// Edge is one typed edge row. FilePath names the owning extraction batch so
// a re-index can replace a file's edges atomically.
type Edge struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	SourceID string `gorm:"type:varchar(96);index"`
	TargetID string `gorm:"type:varchar(96);index"`
	Kind     string `gorm:"type:varchar(20);not null"`
	FilePath string `gorm:"type:varchar(512);index"`
}

// Reference is one unresolved reference row awaiting the linking pass.
type Reference struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	FromNodeID string `gorm:"type:varchar(96);index"`
	Name       string `gorm:"type:varchar(255);index"`
	RawText    string `gorm:"type:text"`
	Kind       string `gorm:"type:varchar(20);not null"`
	Line       int
	Column     int
	FilePath   string `gorm:"type:varchar(512);index"`
}

// TableName customizations for cleaner names
func (File) TableName() string      { return "files" }
func (Node) TableName() string      { return "nodes" }
func (Edge) TableName() string      { return "edges" }
func (Reference) TableName() string { return "refs" }

// NodeFromCore converts an extracted node to its row form.
func NodeFromCore(n core.Node) Node {
	row := Node{
		ID:            n.ID,
		Kind:          string(n.Kind),
		Name:          n.Name,
		QualifiedName: n.QualifiedName,
		FilePath:      n.FilePath,
		Language:      n.Language,
		StartLine:     n.StartLine,
		EndLine:       n.EndLine,
		StartColumn:   n.StartColumn,
		EndColumn:     n.EndColumn,
		UpdatedAt:     n.UpdatedAt,
		Visibility:    string(n.Visibility),
		IsExported:    n.IsExported,
		IsAsync:       n.IsAsync,
		IsStatic:      n.IsStatic,
		IsAbstract:    n.IsAbstract,
		Signature:     n.Signature,
		Docstring:     n.Docstring,
	}
	if len(n.Decorators) > 0 {
		if data, err := json.Marshal(n.Decorators); err == nil {
			row.Decorators = datatypes.JSON(data)
		}
	}
	return row
}

// EdgeFromCore converts an extracted edge to its row form.
func EdgeFromCore(e core.Edge, filePath string) Edge {
	return Edge{
		SourceID: e.SourceID,
		TargetID: e.TargetID,
		Kind:     string(e.Kind),
		FilePath: filePath,
	}
}

// ReferenceFromCore converts an unresolved reference to its row form.
func ReferenceFromCore(r core.UnresolvedReference, filePath string) Reference {
	return Reference{
		FromNodeID: r.FromNodeID,
		Name:       r.Name,
		RawText:    r.RawText,
		Kind:       string(r.Kind),
		Line:       r.Line,
		Column:     r.Column,
		FilePath:   filePath,
	}
}
