// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/scheduler"
	"github.com/AvelDev/easyfood/testutil"
	"github.com/AvelDev/easyfood/watch"
)

// TestFullLunchWorkflow tests the complete end-to-end workflow:
// 1. Register users
// 2. Admin creates a poll
// 3. A proposal gets approved into the option list
// 4. Users vote (one changes their mind)
// 5. Admin closes voting, winner is tallied
// 6. Users place orders
// 7. Admin adjusts an order and marks it paid
// 8. Admin closes ordering
// 9. Verify the final derived view
func TestFullLunchWorkflow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	hub := watch.NewHub(watch.NewDBLoader(conn))
	closer := scheduler.New(AutoCloseFunc(conn, hub))
	defer closer.CancelAll()

	userHandler := NewUserHandler(conn, cfg)
	pollHandler := NewPollHandler(conn, cfg, closer, hub)
	votingHandler := NewVotingHandler(conn, cfg, hub)
	orderHandler := NewOrderHandler(conn, cfg, hub)
	proposalHandler := NewProposalHandler(conn, cfg, hub)
	resultsHandler := NewResultsHandler(conn, cfg)

	// Step 1: Register three users; promote the first to admin
	tokens := map[string]string{}
	ids := map[string]string{}
	for _, u := range []struct{ name, email string }{
		{"Ola", "ola@example.com"},
		{"Alice", "alice@example.com"},
		{"Bob", "bob@example.com"},
	} {
		req := testutil.MakeRequest("POST", "/auth/register",
			models.RegisterRequest{DisplayName: u.name, Email: u.email}, nil)
		w := httptest.NewRecorder()
		userHandler.Register(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Register %s failed: %d - %s", u.name, w.Code, w.Body.String())
		}

		var resp models.RegisterResponse
		testutil.AssertJSON(t, w, &resp)
		tokens[u.name] = resp.SessionToken
		ids[u.name] = resp.UserID
	}
	if _, err := conn.Exec(`UPDATE app_user SET role = 'admin' WHERE id = $1`, ids["Ola"]); err != nil {
		t.Fatalf("Step 1 - Promote admin failed: %v", err)
	}
	t.Logf("Step 1 - Registered %d users", len(tokens))

	// Step 2: Admin creates a poll closing in an hour
	req := testutil.MakeRequest("POST", "/polls", models.CreatePollRequest{
		Title:        "Friday Lunch",
		Options:      []models.RestaurantOption{{Name: "Pizza Place"}, {Name: "Sushi Bar"}},
		VotingEndsAt: time.Now().Add(time.Hour),
	}, map[string]string{SessionHeader: tokens["Ola"]})
	w := httptest.NewRecorder()
	pollHandler.CreatePoll(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Create poll failed: %d - %s", w.Code, w.Body.String())
	}

	var createResp models.CreatePollResponse
	testutil.AssertJSON(t, w, &createResp)
	pollID := createResp.PollID
	t.Logf("Step 2 - Created poll: %s", pollID)

	// Step 3: Bob proposes Taco Truck; admin approves it
	req = testutil.MakeRequest("POST", "/polls/"+pollID+"/proposals",
		models.SubmitProposalRequest{Name: "Taco Truck"},
		map[string]string{SessionHeader: tokens["Bob"]})
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	proposalHandler.SubmitProposal(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Submit proposal failed: %d - %s", w.Code, w.Body.String())
	}

	var propResp models.SubmitProposalResponse
	testutil.AssertJSON(t, w, &propResp)

	req = testutil.MakeRequest("POST", "/polls/"+pollID+"/proposals/"+propResp.ProposalID+"/review",
		models.ReviewProposalRequest{Approve: true},
		map[string]string{SessionHeader: tokens["Ola"]})
	req.SetPathValue("id", pollID)
	req.SetPathValue("propID", propResp.ProposalID)
	w = httptest.NewRecorder()
	proposalHandler.ReviewProposal(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Review proposal failed: %d - %s", w.Code, w.Body.String())
	}
	t.Log("Step 3 - Taco Truck approved into the option list")

	// Step 4: Everyone votes; Bob changes his mind from Sushi Bar to Pizza Place
	vote := func(who string, restaurants ...string) {
		req := testutil.MakeRequest("PUT", "/polls/"+pollID+"/vote",
			models.SubmitVoteRequest{Restaurants: restaurants},
			map[string]string{SessionHeader: tokens[who]})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		votingHandler.SubmitVote(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 4 - Vote by %s failed: %d - %s", who, w.Code, w.Body.String())
		}
	}
	vote("Ola", "Pizza Place")
	vote("Alice", "Pizza Place", "Taco Truck")
	vote("Bob", "Sushi Bar")
	vote("Bob", "Pizza Place")
	t.Log("Step 4 - Votes in")

	// Step 5: Admin closes voting
	req = testutil.MakeRequest("POST", "/polls/"+pollID+"/close", nil,
		map[string]string{SessionHeader: tokens["Ola"]})
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	pollHandler.ClosePoll(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Close failed: %d - %s", w.Code, w.Body.String())
	}

	var closeResp models.ClosePollResponse
	testutil.AssertJSON(t, w, &closeResp)
	if closeResp.SelectedRestaurant != "Pizza Place" {
		t.Fatalf("Step 5 - Expected Pizza Place to win, got %q", closeResp.SelectedRestaurant)
	}
	if closeResp.Counts["Pizza Place"] != 3 || closeResp.Counts["Sushi Bar"] != 0 || closeResp.Counts["Taco Truck"] != 1 {
		t.Fatalf("Step 5 - Unexpected counts: %v", closeResp.Counts)
	}
	t.Logf("Step 5 - Winner: %s", closeResp.SelectedRestaurant)

	// Step 6: Alice and Bob place orders
	order := func(who, dish string, cost int64) {
		req := testutil.MakeRequest("PUT", "/polls/"+pollID+"/order",
			models.SubmitOrderRequest{Dish: dish, CostCents: cost},
			map[string]string{SessionHeader: tokens[who]})
		req.SetPathValue("id", pollID)
		w := httptest.NewRecorder()
		orderHandler.SubmitOrder(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 6 - Order by %s failed: %d - %s", who, w.Code, w.Body.String())
		}
	}
	order("Alice", "Margherita", 1200)
	order("Bob", "Calzone", 2050)
	t.Log("Step 6 - Orders placed")

	// Step 7: Admin splits the delivery fee onto Bob and marks him paid
	adjustment := int64(250)
	paid := models.PaymentPaid
	req = testutil.MakeRequest("PATCH", "/polls/"+pollID+"/orders/"+ids["Bob"],
		models.AdminOrderUpdateRequest{AdjustmentCents: &adjustment, PaymentStatus: &paid},
		map[string]string{SessionHeader: tokens["Ola"]})
	req.SetPathValue("id", pollID)
	req.SetPathValue("userID", ids["Bob"])
	w = httptest.NewRecorder()
	orderHandler.UpdateOrderAdmin(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - Adjust order failed: %d - %s", w.Code, w.Body.String())
	}
	t.Log("Step 7 - Order adjusted")

	// Step 8: Admin closes ordering
	req = testutil.MakeRequest("POST", "/polls/"+pollID+"/close-ordering", nil,
		map[string]string{SessionHeader: tokens["Ola"]})
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	pollHandler.CloseOrdering(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Step 8 - Close ordering failed: %d - %s", w.Code, w.Body.String())
	}

	// Late order bounces off the closed window
	req = testutil.MakeRequest("PUT", "/polls/"+pollID+"/order",
		models.SubmitOrderRequest{Dish: "Too Late", CostCents: 100},
		map[string]string{SessionHeader: tokens["Ola"]})
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	orderHandler.SubmitOrder(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("Step 8 - Late order should conflict, got %d", w.Code)
	}
	t.Log("Step 8 - Ordering closed")

	// Step 9: Final view
	req = testutil.MakeRequest("GET", "/polls/"+pollID+"/results", nil,
		map[string]string{SessionHeader: tokens["Alice"]})
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	resultsHandler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var view models.PollView
	testutil.AssertJSON(t, w, &view)

	if view.State != models.StateOrderingClosed {
		t.Errorf("Step 9 - Expected ordering_closed, got %s", view.State)
	}
	if view.SelectedRestaurant != "Pizza Place" {
		t.Errorf("Step 9 - Expected Pizza Place, got %q", view.SelectedRestaurant)
	}
	if view.VoterCount != 3 || view.OrderCount != 2 {
		t.Errorf("Step 9 - Expected 3 voters and 2 orders, got %d and %d", view.VoterCount, view.OrderCount)
	}
	// 1200 + 2050 + 250 adjustment
	if view.TotalCostCents != 3500 {
		t.Errorf("Step 9 - Expected total 3500, got %d", view.TotalCostCents)
	}
	if view.UserOrder == nil || view.UserOrder.Dish != "Margherita" {
		t.Errorf("Step 9 - Expected Alice's own order in the view, got %+v", view.UserOrder)
	}
	t.Log("Step 9 - Final view verified")
}

// TestWatchFeedFollowsMutations drives the live feed end to end: subscribe,
// mutate through handlers, and verify snapshots arrive with fresh state.
func TestWatchFeedFollowsMutations(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	hub := watch.NewHub(watch.NewDBLoader(conn))
	votingHandler := NewVotingHandler(conn, cfg, hub)

	adminID, _ := testutil.CreateTestUser(t, conn, cfg, "Admin", "admin@example.com", "admin")
	_, aliceToken := testutil.CreateTestUser(t, conn, cfg, "Alice", "alice@example.com", "user")

	pollID := testutil.CreateTestPoll(t, conn, adminID, "voting_open", "Pizza Place", "Sushi Bar")

	sub, err := hub.Subscribe(pollID)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	// Initial snapshot: no votes yet
	snap := <-sub.C
	if snap.Poll == nil || len(snap.Votes) != 0 {
		t.Fatalf("Unexpected initial snapshot: %+v", snap)
	}

	req := testutil.MakeRequest("PUT", "/polls/"+pollID+"/vote",
		models.SubmitVoteRequest{Restaurants: []string{"Pizza Place"}},
		map[string]string{SessionHeader: aliceToken})
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	votingHandler.SubmitVote(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	select {
	case snap = <-sub.C:
		if len(snap.Votes) != 1 || snap.Votes[0].DisplayName != "Alice" {
			t.Errorf("Expected Alice's vote in the snapshot, got %+v", snap.Votes)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("No snapshot arrived after the vote")
	}
}
