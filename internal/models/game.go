package models

import "strings"

// GameType identifies a game in the static registry
type GameType string

// Tag groups games by the practice mechanic they exercise
type Tag string

const (
	// TagRecall marks direct recall and repetition games
	TagRecall Tag = "recall"
	// TagConstruction marks games where the word is built up piece by piece
	TagConstruction Tag = "construction"
	// TagFluency marks speed and in-context usage games
	TagFluency Tag = "fluency"
)

// Mode is the context a session is played in
type Mode string

const (
	ModeNormal     Mode = "normal"
	ModeAssignment Mode = "assignment"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeNormal || m == ModeAssignment
}

// GameDefinition describes a game type. IsSkillBased is fixed per game and
// decides whether word attempts from its sessions count towards mastery.
type GameDefinition struct {
	Type         GameType `json:"gameType"`
	Name         string   `json:"name"`
	IsSkillBased bool     `json:"isSkillBased"`
	Tags         []Tag    `json:"recommendationTags"`
	Categories   []string `json:"categoryAffinities,omitempty"`
}

// HasTag reports whether the game carries tag
func (g GameDefinition) HasTag(tag Tag) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SuitsCategory reports whether the game is specifically suited to category
func (g GameDefinition) SuitsCategory(category string) bool {
	for _, c := range g.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// registry order is the suggestion order used by the recommendation generator
var registry = []GameDefinition{
	{Type: "memory-game", Name: "Memory Game", IsSkillBased: false, Tags: []Tag{TagRecall}},
	{Type: "word-scramble", Name: "Word Scramble", IsSkillBased: true, Tags: []Tag{TagRecall, TagConstruction}},
	{Type: "flashcards", Name: "Flashcards", IsSkillBased: true, Tags: []Tag{TagRecall}},
	{Type: "translation-drill", Name: "Translation Drill", IsSkillBased: true, Tags: []Tag{TagRecall, TagFluency}},
	{Type: "spelling-practice", Name: "Spelling Practice", IsSkillBased: true, Tags: []Tag{TagConstruction, TagRecall}},
	{Type: "missing-letter", Name: "Missing Letter", IsSkillBased: true, Tags: []Tag{TagConstruction}},
	{Type: "hangman", Name: "Hangman", IsSkillBased: false, Tags: []Tag{TagConstruction}},
	{Type: "sentence-builder", Name: "Sentence Builder", IsSkillBased: true, Tags: []Tag{TagConstruction, TagFluency},
		Categories: []string{"phrases", "verbs"}},
	{Type: "word-builder", Name: "Word Builder", IsSkillBased: true, Tags: []Tag{TagConstruction}},
	{Type: "speed-translation", Name: "Speed Translation", IsSkillBased: true, Tags: []Tag{TagFluency}},
	{Type: "word-blast", Name: "Word Blast", IsSkillBased: true, Tags: []Tag{TagFluency}},
	{Type: "listening-challenge", Name: "Listening Challenge", IsSkillBased: true, Tags: []Tag{TagFluency},
		Categories: []string{"numbers"}},
	{Type: "vocab-quiz", Name: "Vocabulary Quiz", IsSkillBased: true, Tags: []Tag{TagRecall}},
	{Type: "conversation-practice", Name: "Conversation Practice", IsSkillBased: true, Tags: []Tag{TagFluency},
		Categories: []string{"greetings", "conversation", "phrases"}},
	{Type: "noughts-and-crosses", Name: "Noughts and Crosses", IsSkillBased: false, Tags: []Tag{TagRecall}},
	{Type: "word-search", Name: "Word Search", IsSkillBased: false, Tags: []Tag{TagRecall}},
}

var registryIndex = func() map[GameType]GameDefinition {
	m := make(map[GameType]GameDefinition, len(registry))
	for _, g := range registry {
		m[g.Type] = g
	}
	return m
}()

// LookupGame resolves a game type against the registry
func LookupGame(gameType GameType) (GameDefinition, bool) {
	g, ok := registryIndex[gameType]
	return g, ok
}

// Games returns every registered game in registry order
func Games() []GameDefinition {
	out := make([]GameDefinition, len(registry))
	copy(out, registry)
	return out
}

// GamesWithTag returns the games carrying tag, in registry order
func GamesWithTag(tag Tag) []GameType {
	var out []GameType
	for _, g := range registry {
		if g.HasTag(tag) {
			out = append(out, g.Type)
		}
	}
	return out
}

// GameForCategory returns the first registered game with an affinity for category
func GameForCategory(category string) (GameType, bool) {
	for _, g := range registry {
		if g.SuitsCategory(category) {
			return g.Type, true
		}
	}
	return "", false
}
