// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/watch"
)

var ErrPollNotFound = errors.New("poll not found")

// TallyResult holds per-restaurant vote counts and voter name lists.
// Counts cover exactly the poll's current option list: options nobody
// picked read 0, and choices referencing removed options are ignored.
type TallyResult struct {
	Counts map[string]int
	Voters map[string][]string
}

// TallyVotes aggregates votes against the poll's option list. A voter who
// selected N restaurants contributes one count to each of the N; an empty
// selection is an abstention and contributes nothing. Voter lists follow
// the input vote order (update time), which LoadVotes provides.
func TallyVotes(options []models.RestaurantOption, votes []models.VoteRecord) TallyResult {
	res := TallyResult{
		Counts: make(map[string]int, len(options)),
		Voters: make(map[string][]string, len(options)),
	}
	for _, opt := range options {
		res.Counts[opt.Name] = 0
		res.Voters[opt.Name] = []string{}
	}

	for _, vote := range votes {
		for _, restaurant := range vote.Restaurants {
			if _, known := res.Counts[restaurant]; !known {
				continue
			}
			res.Counts[restaurant]++
			res.Voters[restaurant] = append(res.Voters[restaurant], vote.VoterName)
		}
	}
	return res
}

// PickWinner selects the restaurant with the highest count. Ties break to
// the restaurant appearing first in the poll's original option order, so
// the winner never depends on vote arrival order. Zero total votes means
// no winner (ok == false).
func PickWinner(options []models.RestaurantOption, counts map[string]int) (winner string, ok bool) {
	best := 0
	for _, opt := range options {
		if counts[opt.Name] > best {
			best = counts[opt.Name]
			winner = opt.Name
		}
	}
	return winner, best > 0
}

// voteRecords strips votes down to the tally input shape.
func voteRecords(votes []models.VoteWithUser) []models.VoteRecord {
	records := make([]models.VoteRecord, len(votes))
	for i, v := range votes {
		records[i] = models.VoteRecord{
			VoterName:   v.DisplayName,
			Restaurants: v.Restaurants,
			UpdatedAt:   v.UpdatedAt,
		}
	}
	return records
}

// ClosePollNow tallies the poll's votes and persists the closed state with
// the selected restaurant. It is idempotent: the update is conditional on
// closed = FALSE, so a second invocation (scheduler racing an explicit
// close, or a countdown-expiry callback) leaves the stored winner alone
// and reports the existing one.
func ClosePollNow(db *sql.DB, pollID string) (*models.ClosePollResponse, error) {
	poll, err := watch.LoadPoll(db, pollID)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return nil, ErrPollNotFound
	}

	votes, err := watch.LoadVotes(db, pollID)
	if err != nil {
		return nil, err
	}

	tally := TallyVotes(poll.Options, voteRecords(votes))
	winner, _ := PickWinner(poll.Options, tally.Counts)

	res, err := db.Exec(`
		UPDATE poll
		SET closed = TRUE, selected_restaurant = $1
		WHERE id = $2 AND closed = FALSE
	`, winner, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to close poll: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Already closed by a concurrent path; the stored selection wins.
		winner = poll.SelectedRestaurant
		slog.Info("poll already closed", "poll_id", pollID, "selected", winner)
	} else {
		slog.Info("poll closed", "poll_id", pollID, "selected", winner, "voters", len(votes))
	}

	return &models.ClosePollResponse{
		ClosedAt:           time.Now(),
		SelectedRestaurant: winner,
		Counts:             tally.Counts,
	}, nil
}

// AutoCloseFunc builds the scheduler's closure action: close the poll,
// then publish a fresh snapshot to live watchers. Errors are logged, not
// retried; the next Schedule call re-attempts a missed close.
func AutoCloseFunc(db *sql.DB, hub *watch.Hub) func(pollID string) {
	return func(pollID string) {
		if _, err := ClosePollNow(db, pollID); err != nil {
			if errors.Is(err, ErrPollNotFound) {
				slog.Warn("auto-close fired for deleted poll", "poll_id", pollID)
				return
			}
			slog.Error("auto-close failed", "poll_id", pollID, "error", err)
			return
		}
		hub.Publish(pollID)
	}
}
