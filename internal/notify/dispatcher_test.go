// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pursuegen/pursue-go/internal/model"
)

// fakeNotifier records sent messages.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []Message
}

func (f *fakeNotifier) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeNotifier) sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.messages...)
}

func TestDispatcher_DeliversQueued(t *testing.T) {
	fake := &fakeNotifier{}
	d := NewDispatcher(fake, nil, 2)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		if err := d.Send(context.Background(), Message{Subject: "test", To: []string{"admin@example.com"}}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	d.Stop()

	if got := len(fake.sent()); got != 5 {
		t.Errorf("delivered %d messages, want 5", got)
	}
}

func TestDispatcher_StopIdempotent(t *testing.T) {
	d := NewDispatcher(&fakeNotifier{}, nil, 1)
	d.Start(context.Background())
	d.Stop()
	d.Stop()
}

func TestApprovalRequest(t *testing.T) {
	user := model.User{
		Email:          "new@example.com",
		FirstName:      "New",
		LastName:       "Leader",
		RequestedGroup: string(model.RoleHighSchoolGirls),
	}

	msg := ApprovalRequest(user, []string{"admin@example.com"},
		"https://example.com/access/action?decision=approve",
		"https://example.com/access/action?decision=deny")

	if len(msg.To) != 1 || msg.To[0] != "admin@example.com" {
		t.Errorf("To = %v, want the admin list", msg.To)
	}
	if !strings.Contains(msg.Body, "High School Girls") {
		t.Error("body should name the requested group")
	}
	if !strings.Contains(msg.Body, "decision=approve") || !strings.Contains(msg.Body, "decision=deny") {
		t.Error("body should carry both action links")
	}
}

func TestApprovalRequest_NoGroupDefaultsToLeader(t *testing.T) {
	msg := ApprovalRequest(model.User{Email: "x@example.com"}, []string{"a@example.com"}, "u1", "u2")
	if !strings.Contains(msg.Body, "Leader (full editing)") {
		t.Error("body should default to the full-editing description")
	}
}
