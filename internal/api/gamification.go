package api

import (
	"context"
	"fmt"

	"github.com/theirongolddev/poupa/internal/xp"
)

// UserXP fetches the current XP state.
func (c *Client) UserXP(ctx context.Context) (xp.State, error) {
	var s xp.State
	if err := c.get(ctx, "/user/xp", nil, &s); err != nil {
		return xp.State{}, err
	}
	if err := s.Validate(); err != nil {
		return xp.State{}, fmt.Errorf("%w: user xp: %v", ErrMalformedResponse, err)
	}
	return s, nil
}

// GrantDailyXP asks for today's login award. The call is idempotent per
// calendar day on the server side; an already-granted day returns
// XPGranted == 0.
func (c *Client) GrantDailyXP(ctx context.Context) (DailyGrantResult, error) {
	var r DailyGrantResult
	if err := c.post(ctx, "/user/daily-xp", nil, &r); err != nil {
		return DailyGrantResult{}, err
	}
	if err := r.validate(); err != nil {
		return DailyGrantResult{}, err
	}
	return r, nil
}

// RecalculateLevel asks the server to recompute the level from current XP.
func (c *Client) RecalculateLevel(ctx context.Context) (RecalculationResult, error) {
	var r RecalculationResult
	if err := c.post(ctx, "/user/recalculate-level", nil, &r); err != nil {
		return RecalculationResult{}, err
	}
	if err := r.validate(); err != nil {
		return RecalculationResult{}, err
	}
	return r, nil
}

// Achievements lists the user's achievements.
func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var out []Achievement
	if err := c.get(ctx, "/user/achievements", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Challenges lists open challenges.
func (c *Client) Challenges(ctx context.Context) ([]Challenge, error) {
	var out []Challenge
	if err := c.get(ctx, "/challenges", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rankings returns the leaderboard.
func (c *Client) Rankings(ctx context.Context) ([]RankingUser, error) {
	var out []RankingUser
	if err := c.get(ctx, "/rankings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
