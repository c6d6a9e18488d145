// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/testutil"
)

func TestGetResults(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(conn, cfg)

	adminID, _ := testutil.CreateTestUser(t, conn, cfg, "Admin", "admin@example.com", "admin")
	aliceID, aliceToken := testutil.CreateTestUser(t, conn, cfg, "Alice", "alice@example.com", "user")
	bobID, _ := testutil.CreateTestUser(t, conn, cfg, "Bob", "bob@example.com", "user")

	pollID := testutil.CreateTestPoll(t, conn, adminID, "voting_open", "Pizza Place", "Sushi Bar", "Taco Truck")
	testutil.SubmitTestVote(t, conn, pollID, aliceID, "Pizza Place")
	testutil.SubmitTestVote(t, conn, pollID, bobID, "Pizza Place", "Sushi Bar")

	t.Run("derived view", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/"+pollID+"/results", nil,
			map[string]string{SessionHeader: aliceToken})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.GetResults(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var view models.PollView
		testutil.AssertJSON(t, w, &view)

		if view.State != models.StateVotingOpen {
			t.Errorf("Expected voting_open, got %s", view.State)
		}
		if view.VoterCount != 2 {
			t.Errorf("Expected 2 voters, got %d", view.VoterCount)
		}

		// Tallies come back in option order
		if len(view.Tallies) != 3 {
			t.Fatalf("Expected 3 tallies, got %d", len(view.Tallies))
		}
		if view.Tallies[0].Name != "Pizza Place" || view.Tallies[0].Count != 2 {
			t.Errorf("Unexpected first tally: %+v", view.Tallies[0])
		}
		if view.Tallies[1].Name != "Sushi Bar" || view.Tallies[1].Count != 1 {
			t.Errorf("Unexpected second tally: %+v", view.Tallies[1])
		}
		if view.Tallies[2].Count != 0 {
			t.Errorf("Untouched option should read zero: %+v", view.Tallies[2])
		}

		// The caller's own vote rides along
		if !view.HasVoted || view.UserVote == nil {
			t.Error("Expected the caller's vote in the view")
		}
		if view.UserVote != nil && len(view.UserVote.Restaurants) != 1 {
			t.Errorf("Unexpected user vote: %+v", view.UserVote)
		}
	})

	t.Run("missing poll", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls/nope/results", nil,
			map[string]string{SessionHeader: aliceToken})
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		handler.GetResults(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetSummary(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(conn, cfg)

	adminID, _ := testutil.CreateTestUser(t, conn, cfg, "Admin", "admin@example.com", "admin")
	aliceID, aliceToken := testutil.CreateTestUser(t, conn, cfg, "Alice", "alice@example.com", "user")

	summary := func(pollID string) map[string]interface{} {
		req := testutil.MakeRequest("GET", "/polls/"+pollID+"/summary", nil,
			map[string]string{SessionHeader: aliceToken})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		handler.GetSummary(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp map[string]interface{}
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	t.Run("open poll shows countdown", func(t *testing.T) {
		pollID := testutil.CreateTestPoll(t, conn, adminID, "voting_open", "Pizza Place")

		resp := summary(pollID)
		if resp["state"] != models.StateVotingOpen {
			t.Errorf("Expected voting_open, got %v", resp["state"])
		}
		if _, ok := resp["voting_ends"]; !ok {
			t.Error("Expected voting_ends in open poll summary")
		}
		if _, ok := resp["selected_restaurant"]; ok {
			t.Error("Open poll summary must not reveal a winner")
		}
	})

	t.Run("closed poll shows winner and totals", func(t *testing.T) {
		pollID := testutil.CreateTestPoll(t, conn, adminID, "voting_closed", "Pizza Place", "Sushi Bar")
		testutil.SubmitTestOrder(t, conn, pollID, aliceID, "Margherita", 3250)

		resp := summary(pollID)
		if resp["state"] != models.StateVotingClosed {
			t.Errorf("Expected voting_closed, got %v", resp["state"])
		}
		if resp["selected_restaurant"] != "Pizza Place" {
			t.Errorf("Expected Pizza Place, got %v", resp["selected_restaurant"])
		}
		if resp["total_cost"] != "$32.50" {
			t.Errorf("Expected $32.50, got %v", resp["total_cost"])
		}
	})
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{100, "$1.00"},
		{3250, "$32.50"},
		{123456, "$1,234.56"},
		{-50, "-$0.50"},
		{-123400, "-$1,234.00"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.expected {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.expected)
		}
	}
}
