package models

import "time"

// Priority ranks categories and recommendations
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// RecommendationType names the kind of recommendation
type RecommendationType string

const (
	RecommendationPractice      RecommendationType = "practice"
	RecommendationCategoryFocus RecommendationType = "category-focus"
	RecommendationChallenge     RecommendationType = "challenge"
)

// WeakWord is a word the student needs to practice
type WeakWord struct {
	ID               string     `json:"id"`
	Word             string     `json:"word"`
	Translation      string     `json:"translation"`
	Category         string     `json:"category"`
	Accuracy         int        `json:"accuracy"`
	TotalAttempts    int        `json:"totalAttempts"`
	CorrectAttempts  int        `json:"correctAttempts"`
	LastPracticed    time.Time  `json:"lastPracticed"`
	RecommendedGames []GameType `json:"recommendedGames"`
}

// StrongWord is a word the student has mastered
type StrongWord struct {
	ID            string `json:"id"`
	Word          string `json:"word"`
	Category      string `json:"category"`
	Accuracy      int    `json:"accuracy"`
	TotalAttempts int    `json:"totalAttempts"`
	MasteryLevel  int    `json:"masteryLevel"`
}

// Recommendation is a suggested next practice activity
type Recommendation struct {
	Type          RecommendationType `json:"type"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Priority      Priority           `json:"priority"`
	EstimatedTime string             `json:"estimatedTime"`
	Category      string             `json:"category,omitempty"`
	TargetWords   []string           `json:"targetWords"`
}

// AnalysisSummary holds the headline numbers of an analysis
type AnalysisSummary struct {
	TotalWords       int `json:"totalWords"`
	WeakWordsCount   int `json:"weakWordsCount"`
	StrongWordsCount int `json:"strongWordsCount"`
	AverageAccuracy  int `json:"averageAccuracy"`
}

// WeakWordsAnalysis is the weak-words-analysis response body
type WeakWordsAnalysis struct {
	WeakWords       []WeakWord       `json:"weakWords"`
	StrongWords     []StrongWord     `json:"strongWords"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         AnalysisSummary  `json:"summary"`
}

// CategoryPerformanceSummary rolls up a student's performance in one category
type CategoryPerformanceSummary struct {
	Category        string   `json:"category"`
	TotalWords      int      `json:"totalWords"`
	MasteredWords   int      `json:"masteredWords"`
	WeakWords       int      `json:"weakWords"`
	AverageAccuracy float64  `json:"averageAccuracy"`
	Priority        Priority `json:"priority"`
}
