package api

import (
	"fmt"

	"github.com/theirongolddev/poupa/internal/xp"
)

// Transaction type tags.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidType reports whether t is a known transaction type tag.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Summary periods.
const (
	PeriodAll   = "all"
	PeriodMonth = "month"
	PeriodWeek  = "week"
)

// ValidPeriod reports whether p is a known summary period.
func ValidPeriod(p string) bool {
	return p == PeriodAll || p == PeriodMonth || p == PeriodWeek
}

// LoginResult is the body of a successful POST /login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username"`
	Message     string `json:"message,omitempty"`
}

// RegisterRequest is the registration form minus the password confirmation.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"`
}

// Profile is the current user's record.
type Profile struct {
	ID          int      `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	FullName    string   `json:"full_name"`
	BirthDate   string   `json:"birth_date"`
	CreatedAt   string   `json:"created_at"`
	LastLogin   *string  `json:"last_login,omitempty"`
	XP          int      `json:"xp,omitempty"`
	Level       int      `json:"level,omitempty"`
	NextLevelXP int      `json:"next_level_xp,omitempty"`
	LastXPGrant *xp.Date `json:"last_xp_grant,omitempty"`
}

// ProfileUpdate carries the fields PUT /profile should change. Nil fields
// are left out of the request.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"`
	Password  *string `json:"password,omitempty"`
}

// Category is a server-owned transaction category.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Transaction is one income or expense record. Date is "YYYY-MM-DD".
type Transaction struct {
	ID          int       `json:"id,omitempty"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	CreatedAt   string    `json:"created_at,omitempty"`
	UserID      int       `json:"user_id,omitempty"`
	CategoryID  int       `json:"category_id"`
	Category    *Category `json:"category,omitempty"`
}

// TransactionInput is the body of POST /transactions.
type TransactionInput struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date,omitempty"`
	CategoryID  int     `json:"category_id"`
}

// TransactionUpdate is the body of PUT /transactions/{id}.
type TransactionUpdate struct {
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Date        *string  `json:"date,omitempty"`
	CategoryID  *int     `json:"category_id,omitempty"`
}

// TransactionFilter narrows GET /transactions. Zero fields are omitted.
type TransactionFilter struct {
	Type       string
	CategoryID int
	StartDate  string
	EndDate    string
	Limit      int
}

// FinancialSummary is the body of GET /summary.
type FinancialSummary struct {
	Period            string             `json:"period"`
	Income            float64            `json:"income"`
	Expenses          float64            `json:"expenses"`
	Balance           float64            `json:"balance"`
	IncomeByCategory  map[string]float64 `json:"income_by_category"`
	ExpenseByCategory map[string]float64 `json:"expense_by_category"`
}

// DailyGrantResult is the body of POST /user/daily-xp. The server leaves
// xp_granted out when today's grant was already used; it decodes as 0.
type DailyGrantResult struct {
	XPGranted   int    `json:"xp_granted"`
	TotalXP     int    `json:"total_xp"`
	Level       int    `json:"level"`
	NextLevelXP int    `json:"next_level_xp"`
	Message     string `json:"message"`
}

// State returns the XP state the grant leaves behind.
func (r DailyGrantResult) State() xp.State {
	return xp.State{XP: r.TotalXP, Level: r.Level, NextLevelXP: r.NextLevelXP}
}

func (r DailyGrantResult) validate() error {
	if r.XPGranted < 0 {
		return fmt.Errorf("%w: xp_granted %d is negative", ErrMalformedResponse, r.XPGranted)
	}
	if err := r.State().Validate(); err != nil {
		return fmt.Errorf("%w: daily grant: %v", ErrMalformedResponse, err)
	}
	return nil
}

// RecalculationResult is the body of POST /user/recalculate-level.
// OldLevel is only sent by some servers.
type RecalculationResult struct {
	LevelChanged bool   `json:"level_changed"`
	OldLevel     *int   `json:"old_level,omitempty"`
	NewLevel     int    `json:"new_level"`
	XP           int    `json:"xp"`
	NextLevelXP  int    `json:"next_level_xp"`
	Message      string `json:"message"`
}

func (r RecalculationResult) validate() error {
	s := xp.State{XP: r.XP, Level: r.NewLevel, NextLevelXP: r.NextLevelXP}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: recalculation: %v", ErrMalformedResponse, err)
	}
	if r.OldLevel != nil && *r.OldLevel < 1 {
		return fmt.Errorf("%w: old_level %d is below 1", ErrMalformedResponse, *r.OldLevel)
	}
	return nil
}

// Challenge is an open challenge. Progress is a fraction in [0, 1].
type Challenge struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	XPReward    int     `json:"xp_reward"`
	Progress    float64 `json:"progress"`
	Status      string  `json:"status"`
	Icon        string  `json:"icon"`
}

// Achievement is either earned (AchievedAt set) or in progress.
type Achievement struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	XPReward    int      `json:"xp_reward"`
	AchievedAt  *string  `json:"achieved_at,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
	Icon        string   `json:"icon"`
}

// Achieved reports whether the achievement has been earned.
func (a Achievement) Achieved() bool {
	return a.AchievedAt != nil && *a.AchievedAt != ""
}

// RankingUser is one row of the leaderboard. Position is only sent for the
// current user when they fall outside the top rows.
type RankingUser struct {
	Username      string `json:"username"`
	Level         int    `json:"level"`
	XP            int    `json:"xp"`
	Position      *int   `json:"position,omitempty"`
	IsCurrentUser bool   `json:"is_current_user"`
}

// messageResult is the {message} confirmation body of writes and deletes.
type messageResult struct {
	Message string `json:"message"`
}
