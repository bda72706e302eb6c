package account

import "time"

// Theme values accepted in Settings.Theme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// Account is the public view of a registered user. It never carries the
// password credential; see Credentials.
type Account struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"joinDate"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `json:"isActive"`
	Settings  Settings   `json:"settings"`
	Stats     Stats      `json:"stats"`
}

// Credentials is the private view used only to verify a login.
type Credentials struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
}

// Settings holds user preferences.
type Settings struct {
	AIEnabled     bool         `json:"aiEnabled"`
	Notifications bool         `json:"notifications"`
	Theme         string       `json:"theme"`
	Timezone      string       `json:"timezone"`
	WorkingHours  WorkingHours `json:"workingHours"`
}

type WorkingHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultSettings returns the settings every new account starts with.
func DefaultSettings() Settings {
	return Settings{
		AIEnabled:     true,
		Notifications: true,
		Theme:         ThemeAuto,
		Timezone:      "UTC",
		WorkingHours:  WorkingHours{Start: "09:00", End: "17:00"},
	}
}

// Stats is the denormalized running summary kept on the account.
type Stats struct {
	TotalSessions       int     `json:"totalSessions"`
	TotalProductiveTime int     `json:"totalProductiveTime"`
	AverageScore        float64 `json:"averageScore"`
	Streak              Streak  `json:"streak"`
}

// Streak counts consecutive UTC days with at least one recorded session.
type Streak struct {
	Current        int        `json:"current"`
	Longest        int        `json:"longest"`
	LastActiveDate *time.Time `json:"lastActiveDate,omitempty"`
}

// Touch advances the streak for activity at the given instant. Activity on
// the last active day, or on an earlier day, leaves the streak unchanged.
func (s Streak) Touch(at time.Time) Streak {
	day := truncateDay(at)
	if s.LastActiveDate == nil {
		s.Current = 1
	} else {
		last := truncateDay(*s.LastActiveDate)
		switch {
		case !day.After(last):
			return s
		case day.Equal(last.AddDate(0, 0, 1)):
			s.Current++
		default:
			s.Current = 1
		}
	}
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActiveDate = &day
	return s
}

// Observe folds one more recorded session into the stats.
func (s Stats) Observe(durationMinutes int, productive bool, score int, at time.Time) Stats {
	s.TotalSessions++
	if productive {
		s.TotalProductiveTime += durationMinutes
	}
	n := float64(s.TotalSessions)
	s.AverageScore = s.AverageScore + (float64(score)-s.AverageScore)/n
	s.Streak = s.Streak.Touch(at)
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
