package models

import "time"

// UncategorizedCategory is reported for words missing from the catalog
const UncategorizedCategory = "uncategorized"

// VocabularyItem represents a word in the vocabulary catalog
type VocabularyItem struct {
	ID          string    `db:"id" json:"id" yaml:"id"`
	Word        string    `db:"word" json:"word" yaml:"word"`
	Translation string    `db:"translation" json:"translation" yaml:"translation"`
	Category    string    `db:"category" json:"category" yaml:"category"`
	Subcategory string    `db:"subcategory" json:"subcategory,omitempty" yaml:"subcategory"`
	CreatedAt   time.Time `db:"created_at" json:"-" yaml:"-"`
}

// UnknownVocabulary stands in for an id that has no catalog entry
func UnknownVocabulary(id string) VocabularyItem {
	return VocabularyItem{ID: id, Word: id, Category: UncategorizedCategory}
}
