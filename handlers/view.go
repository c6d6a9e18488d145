// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"time"

	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/watch"
)

// BuildPollView derives the read model for one snapshot: tallies in option
// order, gating flags, order totals, and the requesting user's own vote and
// order. Pure over (snapshot, userID, now); performs no reads or writes.
// Returns nil when the snapshot carries no poll (deleted).
func BuildPollView(snap *watch.Snapshot, userID string, now time.Time) *models.PollView {
	if snap.Poll == nil {
		return nil
	}
	poll := *snap.Poll

	tally := TallyVotes(poll.Options, voteRecords(snap.Votes))
	tallies := make([]models.OptionTally, len(poll.Options))
	for i, opt := range poll.Options {
		tallies[i] = models.OptionTally{
			Name:   opt.Name,
			URL:    opt.URL,
			Count:  tally.Counts[opt.Name],
			Voters: tally.Voters[opt.Name],
		}
	}

	view := &models.PollView{
		Poll:               poll,
		State:              poll.State(now),
		Tallies:            tallies,
		SelectedRestaurant: poll.SelectedRestaurant,
		VoterCount:         len(snap.Votes),
		CanVote:            poll.CanVote(now),
		CanOrder:           poll.CanOrder(now),
		OrderCount:         len(snap.Orders),
	}

	for _, o := range snap.Orders {
		view.TotalCostCents += o.Order.TotalCents()
	}

	if userID != "" {
		for i := range snap.Votes {
			if snap.Votes[i].UserID == userID {
				v := snap.Votes[i].Vote
				view.HasVoted = true
				view.UserVote = &v
				break
			}
		}
		for i := range snap.Orders {
			if snap.Orders[i].UserID == userID {
				o := snap.Orders[i].Order
				view.UserOrder = &o
				break
			}
		}
	}

	return view
}
