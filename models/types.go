// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
	"time"
)

// Poll lifecycle states. These are derived from the closed flag and the
// ordering deadline, never stored directly.
const (
	StateVotingOpen     = "voting_open"
	StateVotingClosed   = "voting_closed"
	StateOrderingClosed = "ordering_closed"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Payment status values for orders
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentUnpaid  = "unpaid"
)

// Proposal review states
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// Request types

type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type CreatePollRequest struct {
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Options        []RestaurantOption `json:"options"`
	VotingEndsAt   time.Time          `json:"voting_ends_at"`
	OrderingEndsAt *time.Time         `json:"ordering_ends_at,omitempty"`
}

// UpdatePollRequest carries partial poll edits. Nil fields are left untouched.
type UpdatePollRequest struct {
	Title          *string             `json:"title,omitempty"`
	Description    *string             `json:"description,omitempty"`
	Options        *[]RestaurantOption `json:"options,omitempty"`
	VotingEndsAt   *time.Time          `json:"voting_ends_at,omitempty"`
	OrderingEndsAt *time.Time          `json:"ordering_ends_at,omitempty"`
}

type SubmitVoteRequest struct {
	Restaurants []string `json:"restaurants"`
}

type SubmitOrderRequest struct {
	Dish      string `json:"dish"`
	Notes     string `json:"notes"`
	CostCents int64  `json:"cost_cents"`
}

// AdminOrderUpdateRequest carries admin-only order adjustments.
// Nil fields are left untouched.
type AdminOrderUpdateRequest struct {
	AdminNotes      *string `json:"admin_notes,omitempty"`
	AdjustmentCents *int64  `json:"adjustment_cents,omitempty"`
	PaymentStatus   *string `json:"payment_status,omitempty"`
	Confirmed       *bool   `json:"confirmed,omitempty"`
}

type SubmitProposalRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type ReviewProposalRequest struct {
	Approve    bool   `json:"approve"`
	AdminNotes string `json:"admin_notes"`
}

// Response types

type RegisterResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
	Role         string `json:"role"`
	IsNew        bool   `json:"is_new"`
}

type CreatePollResponse struct {
	PollID string `json:"poll_id"`
}

type SubmitVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Message string `json:"message"`
}

type SubmitOrderResponse struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type SubmitProposalResponse struct {
	ProposalID string `json:"proposal_id"`
}

type ClosePollResponse struct {
	ClosedAt           time.Time      `json:"closed_at"`
	SelectedRestaurant string         `json:"selected_restaurant"`
	Counts             map[string]int `json:"counts"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// RestaurantOption is the canonical option shape. External input is
// normalized into it once, at the write boundary, via NormalizeOptions.
type RestaurantOption struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Poll struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	CreatedBy          string             `json:"created_by"`
	Options            []RestaurantOption `json:"options"`
	VotingEndsAt       time.Time          `json:"voting_ends_at"`
	OrderingEndsAt     *time.Time         `json:"ordering_ends_at,omitempty"`
	Closed             bool               `json:"closed"`
	SelectedRestaurant string             `json:"selected_restaurant,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// State reports the poll's lifecycle state at the given instant.
func (p *Poll) State(now time.Time) string {
	if !p.Closed {
		return StateVotingOpen
	}
	if p.OrderingEndsAt != nil && !now.Before(*p.OrderingEndsAt) {
		return StateOrderingClosed
	}
	return StateVotingClosed
}

// CanVote reports whether vote submissions are currently accepted.
func (p *Poll) CanVote(now time.Time) bool {
	return !p.Closed && now.Before(p.VotingEndsAt)
}

// CanOrder reports whether order submissions are currently accepted:
// voting has closed and the ordering deadline, if any, has not passed.
func (p *Poll) CanOrder(now time.Time) bool {
	if !p.Closed {
		return false
	}
	return p.OrderingEndsAt == nil || now.Before(*p.OrderingEndsAt)
}

// Vote is a user's current restaurant selection for a poll. An empty
// Restaurants list is a first-class abstention: the record stays, the
// voter counts as having voted, and the tally counts nothing for it.
type Vote struct {
	ID          string    `json:"id"`
	PollID      string    `json:"poll_id"`
	UserID      string    `json:"user_id"`
	Restaurants []string  `json:"restaurants"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VoteRecord is the tally input shape: one row per voter with the
// voter's display name resolved.
type VoteRecord struct {
	VoterName   string    `json:"voter_name"`
	Restaurants []string  `json:"restaurants"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Order struct {
	ID              string    `json:"id"`
	PollID          string    `json:"poll_id"`
	UserID          string    `json:"user_id"`
	Dish            string    `json:"dish"`
	Notes           string    `json:"notes,omitempty"`
	CostCents       int64     `json:"cost_cents"`
	AdminNotes      string    `json:"admin_notes,omitempty"`
	AdjustmentCents int64     `json:"adjustment_cents"`
	PaymentStatus   string    `json:"payment_status"`
	Confirmed       bool      `json:"confirmed"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TotalCents is the order cost after the admin adjustment.
func (o *Order) TotalCents() int64 {
	return o.CostCents + o.AdjustmentCents
}

// VoteWithUser pairs a vote with the voter's display name.
type VoteWithUser struct {
	Vote
	DisplayName string `json:"display_name"`
}

// OrderWithUser pairs an order with the orderer's display name for listings.
type OrderWithUser struct {
	Order
	DisplayName string `json:"display_name"`
	TotalCents  int64  `json:"total_cents"`
}

type Proposal struct {
	ID         string     `json:"id"`
	PollID     string     `json:"poll_id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	URL        string     `json:"url,omitempty"`
	Status     string     `json:"status"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	AdminNotes string     `json:"admin_notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// Derived view types (see handlers.BuildPollView)

type OptionTally struct {
	Name   string   `json:"name"`
	URL    string   `json:"url,omitempty"`
	Count  int      `json:"count"`
	Voters []string `json:"voters"`
}

// PollView is the continuously-derived read model for a poll: a pure
// function of one snapshot plus wall-clock time.
type PollView struct {
	Poll               Poll          `json:"poll"`
	State              string        `json:"state"`
	Tallies            []OptionTally `json:"tallies"`
	SelectedRestaurant string        `json:"selected_restaurant,omitempty"`
	VoterCount         int           `json:"voter_count"`
	CanVote            bool          `json:"can_vote"`
	CanOrder           bool          `json:"can_order"`
	OrderCount         int           `json:"order_count"`
	TotalCostCents     int64         `json:"total_cost_cents"`
	HasVoted           bool          `json:"has_voted"`
	UserVote           *Vote         `json:"user_vote,omitempty"`
	UserOrder          *Order        `json:"user_order,omitempty"`
}

var ErrDuplicateOption = errors.New("duplicate restaurant option name")

// NormalizeOptions trims names and URLs, drops empty entries, and rejects
// duplicate names. This is the single normalization point for option lists
// entering the store (poll create/edit, proposal approval).
func NormalizeOptions(opts []RestaurantOption) ([]RestaurantOption, error) {
	out := make([]RestaurantOption, 0, len(opts))
	seen := make(map[string]bool, len(opts))
	for _, opt := range opts {
		name := strings.TrimSpace(opt.Name)
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, ErrDuplicateOption
		}
		seen[name] = true
		out = append(out, RestaurantOption{Name: name, URL: strings.TrimSpace(opt.URL)})
	}
	return out, nil
}

// ValidPaymentStatus reports whether s is one of the payment status values.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentPaid || s == PaymentUnpaid
}
