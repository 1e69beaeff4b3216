// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package eventlog writes the append-only audit log. Every loggable action
// is a fixed (activity, code) pair carrying its level, type, message, and
// subject requirement as data; lookups are exhaustive, so an unknown pair
// or a missing required subject is a synchronous typed error, never a
// silently null row.
package eventlog

import (
	"fmt"

	"github.com/olegiv/gatehouse-go/internal/model"
)

// Activity identifies a group of related audit events.
type Activity string

// Known activities.
const (
	ActivitySignup  Activity = "LOG_EVENT_SIGNUP"
	ActivityLogin   Activity = "LOG_EVENT_LOGIN"
	ActivityAdmin   Activity = "LOG_EVENT_ADMIN"
	ActivityContact Activity = "LOG_EVENT_CONTACT"
	ActivitySystem  Activity = "LOG_EVENT_SYSTEM"
)

// Code identifies one event template within an activity.
type Code string

// Signup event codes.
const (
	CodeSignupCreated       Code = "LES_01"
	CodeSignupSchemaReject  Code = "LES_02"
	CodeSignupWeakPassword  Code = "LES_03"
	CodeSignupDuplicate     Code = "LES_04"
	CodeSignupHTMLSuspected Code = "LES_05"
)

// Login event codes.
const (
	CodeLoginSuccess       Code = "LEL_01"
	CodeLoginUnknownUser   Code = "LEL_02"
	CodeLoginBlocked       Code = "LEL_03"
	CodeLoginWrongPassword Code = "LEL_04"
	CodeLoginRepeatedFails Code = "LEL_05"
	CodeLoginLockedOut     Code = "LEL_06"
)

// Admin moderation event codes. All are keyed to the target user, never the
// acting admin.
const (
	CodeAdminBlock       Code = "LEA_01"
	CodeAdminUnblock     Code = "LEA_02"
	CodeAdminDelete      Code = "LEA_03"
	CodeAdminFlag        Code = "LEA_04"
	CodeAdminAccessLevel Code = "LEA_05"
	CodeAdminMarkSpam    Code = "LEA_06"
)

// Contact event codes.
const (
	CodeContactReceived Code = "LEC_01"
	CodeContactHoneypot Code = "LEC_02"
	CodeContactSpammer  Code = "LEC_03"
)

// System event codes, used by the slog bridge.
const (
	CodeSystemWarning Code = "LSY_01"
	CodeSystemError   Code = "LSY_02"
)

// Template is the fixed definition of one event: its numeric level, type
// tag, message, and whether a subject identifier must accompany it.
type Template struct {
	Level           int64
	Type            string
	Message         string
	SubjectRequired bool
}

// UnknownActivityError reports an activity with no templates.
type UnknownActivityError struct {
	Activity Activity
}

func (e *UnknownActivityError) Error() string {
	return fmt.Sprintf("eventlog: unknown activity %q", string(e.Activity))
}

// UnknownCodeError reports a code that does not belong to its activity.
type UnknownCodeError struct {
	Activity Activity
	Code     Code
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("eventlog: unknown code %q for activity %q", string(e.Code), string(e.Activity))
}

// MissingSubjectError reports a required subject that was not provided.
// This is a programming error in the caller, not a soft failure.
type MissingSubjectError struct {
	Activity Activity
	Code     Code
}

func (e *MissingSubjectError) Error() string {
	return fmt.Sprintf("eventlog: %s/%s requires a subject identifier", string(e.Activity), string(e.Code))
}

// Resolve returns the template for an (activity, code) pair. The matching is
// exhaustive: every known pair has exactly one template.
func Resolve(activity Activity, code Code) (Template, error) {
	switch activity {
	case ActivitySignup:
		switch code {
		case CodeSignupCreated:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "user account created", true}, nil
		case CodeSignupSchemaReject:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "signup payload failed validation", false}, nil
		case CodeSignupWeakPassword:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "signup rejected: weak password", false}, nil
		case CodeSignupDuplicate:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "signup rejected: email already registered", true}, nil
		case CodeSignupHTMLSuspected:
			return Template{model.EventLevelWarn, model.EventTypeSuspicious, "signup rejected: HTML detected in free-text field", false}, nil
		}
	case ActivityLogin:
		switch code {
		case CodeLoginSuccess:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "user logged in", true}, nil
		case CodeLoginUnknownUser:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "login failed: user not found", false}, nil
		case CodeLoginBlocked:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "login rejected: account blocked", true}, nil
		case CodeLoginWrongPassword:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "login failed: wrong password", true}, nil
		case CodeLoginRepeatedFails:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "login failed: repeated wrong-password attempts", true}, nil
		case CodeLoginLockedOut:
			return Template{model.EventLevelWarn, model.EventTypeSuspicious, "login rejected: account temporarily locked", true}, nil
		}
	case ActivityAdmin:
		switch code {
		case CodeAdminBlock:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "user blocked by admin", true}, nil
		case CodeAdminUnblock:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "user unblocked by admin", true}, nil
		case CodeAdminDelete:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "user deleted by admin", true}, nil
		case CodeAdminFlag:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "user flag changed by admin", true}, nil
		case CodeAdminAccessLevel:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "user access level changed by admin", true}, nil
		case CodeAdminMarkSpam:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "contact message marked as spam", true}, nil
		}
	case ActivityContact:
		switch code {
		case CodeContactReceived:
			return Template{model.EventLevelInfo, model.EventTypeInfo, "contact message received", true}, nil
		case CodeContactHoneypot:
			return Template{model.EventLevelWarn, model.EventTypeSuspicious, "honeypot field filled on public form", false}, nil
		case CodeContactSpammer:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "contact message dropped: sender in spammer registry", true}, nil
		}
	case ActivitySystem:
		switch code {
		case CodeSystemWarning:
			return Template{model.EventLevelWarn, model.EventTypeWarn, "runtime warning", false}, nil
		case CodeSystemError:
			return Template{model.EventLevelError, model.EventTypeWarn, "runtime error", false}, nil
		}
	default:
		return Template{}, &UnknownActivityError{Activity: activity}
	}
	return Template{}, &UnknownCodeError{Activity: activity, Code: code}
}
