// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package watch

import (
	"database/sql"
	"fmt"

	"github.com/AvelDev/easyfood/models"
)

// NewDBLoader adapts a database handle into the hub's LoadFunc.
func NewDBLoader(db *sql.DB) LoadFunc {
	return func(pollID string) (*Snapshot, error) {
		return LoadSnapshot(db, pollID)
	}
}

// LoadSnapshot reads the full current state of a poll: document, votes,
// and orders. A missing poll yields a snapshot with nil Poll.
func LoadSnapshot(db *sql.DB, pollID string) (*Snapshot, error) {
	poll, err := LoadPoll(db, pollID)
	if err != nil {
		return nil, err
	}
	if poll == nil {
		return &Snapshot{}, nil
	}

	votes, err := LoadVotes(db, pollID)
	if err != nil {
		return nil, err
	}

	orders, err := LoadOrders(db, pollID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Poll: poll, Votes: votes, Orders: orders}, nil
}

// LoadPoll reads a poll and its option list. Returns (nil, nil) when the
// poll does not exist.
func LoadPoll(db *sql.DB, pollID string) (*models.Poll, error) {
	var poll models.Poll
	var description, selected sql.NullString
	var orderingEndsAt sql.NullTime

	err := db.QueryRow(`
		SELECT id, title, description, created_by, voting_ends_at,
		       ordering_ends_at, closed, selected_restaurant, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&poll.ID, &poll.Title, &description, &poll.CreatedBy,
		&poll.VotingEndsAt, &orderingEndsAt, &poll.Closed,
		&selected, &poll.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	poll.Description = description.String
	poll.SelectedRestaurant = selected.String
	if orderingEndsAt.Valid {
		t := orderingEndsAt.Time
		poll.OrderingEndsAt = &t
	}

	rows, err := db.Query(`
		SELECT name, url
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.RestaurantOption{}
	for rows.Next() {
		var opt models.RestaurantOption
		var url sql.NullString
		if err := rows.Scan(&opt.Name, &url); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		opt.URL = url.String
		poll.Options = append(poll.Options, opt)
	}
	return &poll, rows.Err()
}

// LoadVotes reads every vote for a poll with voter names resolved,
// ordered by vote update time then name.
func LoadVotes(db *sql.DB, pollID string) ([]models.VoteWithUser, error) {
	rows, err := db.Query(`
		SELECT v.id, v.poll_id, v.user_id, v.updated_at, u.display_name
		FROM vote v
		JOIN app_user u ON u.id = v.user_id
		WHERE v.poll_id = $1
		ORDER BY v.updated_at, u.display_name
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	defer rows.Close()

	votes := []models.VoteWithUser{}
	byID := make(map[string]int)
	for rows.Next() {
		var v models.VoteWithUser
		if err := rows.Scan(&v.ID, &v.PollID, &v.UserID, &v.UpdatedAt, &v.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Restaurants = []string{}
		byID[v.ID] = len(votes)
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	choiceRows, err := db.Query(`
		SELECT vc.vote_id, vc.restaurant
		FROM vote_choice vc
		JOIN vote v ON v.id = vc.vote_id
		WHERE v.poll_id = $1
		ORDER BY vc.restaurant
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vote choices: %w", err)
	}
	defer choiceRows.Close()

	for choiceRows.Next() {
		var voteID, restaurant string
		if err := choiceRows.Scan(&voteID, &restaurant); err != nil {
			return nil, fmt.Errorf("failed to scan vote choice: %w", err)
		}
		if i, ok := byID[voteID]; ok {
			votes[i].Restaurants = append(votes[i].Restaurants, restaurant)
		}
	}
	return votes, choiceRows.Err()
}

// LoadOrders reads every order for a poll with orderer names resolved.
func LoadOrders(db *sql.DB, pollID string) ([]models.OrderWithUser, error) {
	rows, err := db.Query(`
		SELECT o.id, o.poll_id, o.user_id, o.dish, o.notes, o.cost_cents,
		       o.admin_notes, o.adjustment_cents, o.payment_status,
		       o.confirmed, o.created_at, o.updated_at, u.display_name
		FROM food_order o
		JOIN app_user u ON u.id = o.user_id
		WHERE o.poll_id = $1
		ORDER BY o.created_at, u.display_name
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	defer rows.Close()

	orders := []models.OrderWithUser{}
	for rows.Next() {
		var o models.OrderWithUser
		var notes, adminNotes sql.NullString
		err := rows.Scan(
			&o.ID, &o.PollID, &o.UserID, &o.Dish, &notes, &o.CostCents,
			&adminNotes, &o.AdjustmentCents, &o.PaymentStatus,
			&o.Confirmed, &o.CreatedAt, &o.UpdatedAt, &o.DisplayName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Notes = notes.String
		o.AdminNotes = adminNotes.String
		o.TotalCents = o.Order.TotalCents()
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
