package services_test

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCreateTribe(t *testing.T) {
	app := newTestApp(t)

	code, body := doRequest(t, app, "POST", "/api/tribes", map[string]interface{}{
		"name": "Protocol Guild", "category": "engineering", "tags": []string{"go"},
	})
	if code != http.StatusCreated {
		t.Fatalf("got %d: %v", code, body)
	}
	if body["id"] != "TRIBE-001" || body["slug"] != "protocol-guild" {
		t.Errorf("tribe fields wrong: %v", body)
	}

	code, body = doRequest(t, app, "POST", "/api/tribes", map[string]interface{}{"name": ""})
	if code != http.StatusBadRequest || body["error"] != "name is required" {
		t.Errorf("blank name: got %d %v", code, body)
	}
}

func TestJoinAndLeaveTribe(t *testing.T) {
	app := newTestApp(t)
	_, created := doRequest(t, app, "POST", "/api/tribes", map[string]interface{}{"name": "Joiners"})
	id, _ := created["id"].(string)

	code, body := doRequest(t, app, "POST", "/api/tribes/"+id+"/join", walletBody("0xaaa"))
	if code != http.StatusOK {
		t.Fatalf("join: got %d: %v", code, body)
	}
	if body["coordinator"] != "0xaaa" {
		t.Errorf("first joiner should coordinate: %v", body["coordinator"])
	}

	code, body = doRequest(t, app, "POST", "/api/tribes/"+id+"/join", walletBody("0xaaa"))
	if code != http.StatusConflict || body["error"] != "Wallet is already in this tribe" {
		t.Errorf("duplicate join: got %d %v", code, body)
	}

	doRequest(t, app, "POST", "/api/tribes/"+id+"/join", walletBody("0xbbb"))
	code, body = doRequest(t, app, "POST", "/api/tribes/"+id+"/leave", walletBody("0xaaa"))
	if code != http.StatusOK || body["coordinator"] != "0xbbb" {
		t.Errorf("leave should promote 0xbbb: got %d %v", code, body)
	}

	code, body = doRequest(t, app, "POST", "/api/tribes/"+id+"/leave", walletBody("0xaaa"))
	if code != http.StatusNotFound || body["error"] != "Wallet is not in this tribe" {
		t.Errorf("double leave: got %d %v", code, body)
	}
}

func TestTribeCapacity(t *testing.T) {
	app := newTestApp(t)
	_, created := doRequest(t, app, "POST", "/api/tribes", map[string]interface{}{"name": "Full House"})
	id, _ := created["id"].(string)

	for i := 0; i < 12; i++ {
		code, body := doRequest(t, app, "POST", "/api/tribes/"+id+"/join", walletBody(fmt.Sprintf("0x%03d", i)))
		if code != http.StatusOK {
			t.Fatalf("join %d: got %d: %v", i, code, body)
		}
	}

	code, body := doRequest(t, app, "POST", "/api/tribes/"+id+"/join", walletBody("0xlate"))
	if code != http.StatusConflict || body["error"] != "Max tribe size reached (12 entities)" {
		t.Errorf("13th join: got %d %v", code, body)
	}
}

func TestListAndGetTribes(t *testing.T) {
	app := newTestApp(t)
	bountyID := createBounty(t, app, map[string]interface{}{
		"title": "Tribe work", "status": "open", "category": "research",
	})
	doRequest(t, app, "POST", "/api/bounties/"+bountyID+"/claim", walletBody("0xaaa"))

	code, body := doRequest(t, app, "GET", "/api/tribes", nil)
	if code != http.StatusOK || body["count"] != float64(1) {
		t.Fatalf("list: got %d %v", code, body)
	}
	tribes, _ := body["tribes"].([]interface{})
	first, _ := tribes[0].(map[string]interface{})
	if first["name"] != "Research Collective" || first["memberCount"] != float64(1) {
		t.Errorf("summary wrong: %v", first)
	}
	if first["activeBountyCount"] != float64(1) || first["bountyCount"] != float64(1) {
		t.Errorf("bounty counts wrong: %v", first)
	}

	tribeID, _ := first["id"].(string)
	code, body = doRequest(t, app, "GET", "/api/tribes/"+tribeID, nil)
	if code != http.StatusOK {
		t.Fatalf("get: got %d: %v", code, body)
	}
	bounties, _ := body["bounties"].([]interface{})
	if len(bounties) != 1 {
		t.Errorf("detail should embed the tribe's bounties: %v", body)
	}

	code, body = doRequest(t, app, "GET", "/api/tribes/TRIBE-999", nil)
	if code != http.StatusNotFound || body["error"] != "Tribe not found" {
		t.Errorf("missing tribe: got %d %v", code, body)
	}
}
