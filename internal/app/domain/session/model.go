package session

import (
	"fmt"
	"time"
)

// Category classifies a usage session. The four values are mutually exclusive.
type Category string

const (
	CategoryProductive  Category = "productive"
	CategoryRestful     Category = "restful"
	CategoryNeutral     Category = "neutral"
	CategoryDistractive Category = "distractive"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryProductive, CategoryRestful, CategoryNeutral, CategoryDistractive}

// Valid reports whether c is one of the four categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryProductive, CategoryRestful, CategoryNeutral, CategoryDistractive:
		return true
	}
	return false
}

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("Category must be one of: productive, restful, neutral, distractive")
	}
	return c, nil
}

var defaultProductivityScores = map[Category]int{
	CategoryProductive:  85,
	CategoryRestful:     70,
	CategoryNeutral:     50,
	CategoryDistractive: 25,
}

// DefaultProductivityScore returns the productivity score assumed for a
// session of category c when the client did not supply one.
func DefaultProductivityScore(c Category) int {
	if v, ok := defaultProductivityScores[c]; ok {
		return v
	}
	return 50
}

// SyncStatus tracks whether a client-side entry reached the server intact.
type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending"
	SyncFailed  SyncStatus = "failed"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncSynced, SyncPending, SyncFailed:
		return true
	}
	return false
}

// Limits on session fields.
const (
	MinDuration   = 1
	MaxDuration   = 1440 // minutes in a day
	MaxAppNameLen = 100
	MaxNotesLen   = 500
	MaxTagLen     = 30
)

// Session is one reported interval of app usage.
type Session struct {
	ID                string     `json:"id"`
	AccountID         string     `json:"userId"`
	AppName           string     `json:"appName"`
	Category          Category   `json:"category"`
	Duration          int        `json:"duration"`
	StartTime         time.Time  `json:"startTime"`
	EndTime           time.Time  `json:"endTime"`
	ProductivityScore int        `json:"productivityScore"`
	Notes             string     `json:"notes,omitempty"`
	Tags              []string   `json:"tags"`
	Metadata          Metadata   `json:"metadata"`
	IsManualEntry     bool       `json:"isManualEntry"`
	SyncStatus        SyncStatus `json:"syncStatus"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Metadata records where a session was captured.
type Metadata struct {
	Platform   string   `json:"platform,omitempty"`
	Version    string   `json:"version,omitempty"`
	DeviceType string   `json:"deviceType,omitempty"`
	Location   Location `json:"location"`
}

type Location struct {
	Timezone string `json:"timezone,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Page is one slice of an account's sessions plus the account total.
type Page struct {
	Sessions []Session `json:"sessions"`
	Total    int       `json:"total"`
}

// Totals holds summed minutes per category.
type Totals struct {
	Productive  int `json:"productive"`
	Restful     int `json:"restful"`
	Neutral     int `json:"neutral"`
	Distractive int `json:"distractive"`
	Count       int `json:"-"`
}

// Add folds minutes into the bucket for c. Unknown categories are dropped.
func (t *Totals) Add(c Category, minutes int) {
	switch c {
	case CategoryProductive:
		t.Productive += minutes
	case CategoryRestful:
		t.Restful += minutes
	case CategoryNeutral:
		t.Neutral += minutes
	case CategoryDistractive:
		t.Distractive += minutes
	}
}

// Total returns the summed minutes across every category.
func (t Totals) Total() int {
	return t.Productive + t.Restful + t.Neutral + t.Distractive
}

// Get returns the minutes recorded for c.
func (t Totals) Get(c Category) int {
	switch c {
	case CategoryProductive:
		return t.Productive
	case CategoryRestful:
		return t.Restful
	case CategoryNeutral:
		return t.Neutral
	case CategoryDistractive:
		return t.Distractive
	}
	return 0
}
