package elements

import (
	"context"
	"net/http"
	"testing"
)

func TestFetchClients(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fetchAllParUniqueMSN" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"scno": "ELR1001", "short_name": "Mill A", "region": "south"},
			{"scno": "ELR1002", "short_name": "Mill B"},
			{"scno": "", "short_name": "No SCNO"},
			{"scno": "ELR1003"}
		]`))
	}))

	clients, err := client.FetchClients(context.Background())
	if err != nil {
		t.Fatalf("FetchClients() failed: %v", err)
	}

	// Entries missing scno or short_name are skipped
	if len(clients) != 2 {
		t.Fatalf("Expected 2 clients, got %d", len(clients))
	}

	if clients[0].SCNO != "ELR1001" || clients[0].ShortName != "Mill A" {
		t.Errorf("Unexpected first client: %+v", clients[0])
	}
}

func TestFetchClientsBadPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": "object"}`))
	}))

	if _, err := client.FetchClients(context.Background()); err == nil {
		t.Error("Expected parse error for non-list payload")
	}
}

func TestFetchClientsServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	if _, err := client.FetchClients(context.Background()); err == nil {
		t.Error("Expected error for 502 response")
	}
}
