// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"fmt"

	"github.com/pursuegen/pursue-go/internal/model"
)

// ApprovalRequest builds the administrator email for a new access
// request. The two links carry the user id and the single-use token;
// clicking either still requires the administrator to be signed in.
func ApprovalRequest(user model.User, adminEmails []string, approveURL, denyURL string) Message {
	group := "Leader (full editing)"
	if model.IsGroupRole(model.Role(user.RequestedGroup)) {
		group = model.GroupLabel(model.Role(user.RequestedGroup))
	}

	body := fmt.Sprintf(`A new access request is waiting for review.

Name:            %s
Email:           %s
Requested group: %s

Approve: %s
Deny:    %s

Each link works once. You must be signed in as an administrator for
either link to take effect.
`, user.FullName(), user.Email, group, approveURL, denyURL)

	return Message{
		To:      adminEmails,
		Subject: fmt.Sprintf("Access request from %s", user.FullName()),
		Body:    body,
	}
}
