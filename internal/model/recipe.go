package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pageza/pantrychef/backend/internal/matcher"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(a)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Scan implements the sql.Scanner interface. Malformed JSON scans as an
// empty list so a bad row never fails a whole query.
func (a *JSONBStringArray) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*a = JSONBStringArray{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		*a = JSONBStringArray{}
		return nil
	}
	*a = out
	return nil
}

// Recipe is an imported recipe. Rows are written by the importer and
// read-only afterwards.
type Recipe struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Ingredients JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Directions  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"directions"`
	Link        string           `gorm:"size:500" json:"link"`
	Source      string           `gorm:"size:255" json:"source"`
	NER         JSONBStringArray `gorm:"column:ner;type:jsonb;not null;default:'[]'" json:"ner"`
	Site        string           `gorm:"size:255" json:"site"`
	Embedding   pgvector.Vector  `gorm:"type:vector(64)" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeSave stores NER tokens in the form the matcher compares, so the
// storage pre-filter finds every recipe the ranker would accept.
func (r *Recipe) BeforeSave(tx *gorm.DB) error {
	ner := make(JSONBStringArray, 0, len(r.NER))
	for _, tok := range r.NER {
		if tok = matcher.NormalizeToken(tok); tok != "" {
			ner = append(ner, tok)
		}
	}
	r.NER = ner
	r.Embedding = NEREmbedding(r.NER)
	return nil
}

// RecipeSummary is the trimmed representation used in lists
type RecipeSummary struct {
	ID    uuid.UUID        `json:"id"`
	Title string           `json:"title"`
	NER   JSONBStringArray `json:"ner"`
}

func (r Recipe) Summary() RecipeSummary {
	return RecipeSummary{ID: r.ID, Title: r.Title, NER: r.NER}
}
