// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

// Package models provides the domain types shared by the store, the
// newsletter roles and the HTTP layer.
//
// SubscriberName and SubscriberEmail can only be obtained through their
// Parse functions, so holding one means the value already passed
// validation.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/zero2prod/internal/validation"
)

// SubscriptionStatus is the lifecycle state of a subscriber.
type SubscriptionStatus string

const (
	// StatusPendingConfirmation is set on registration.
	StatusPendingConfirmation SubscriptionStatus = "pending_confirmation"

	// StatusConfirmed is set once, when a confirmation token is redeemed.
	StatusConfirmed SubscriptionStatus = "confirmed"
)

// SubscriberName is a validated subscriber display name.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates s against the subscriber name rules.
func ParseSubscriberName(s string) (SubscriberName, error) {
	if err := validation.ValidateVar("name", s, "subscriber_name"); err != nil {
		return SubscriberName{}, err
	}
	return SubscriberName{value: s}, nil
}

// String returns the name as submitted.
func (n SubscriberName) String() string {
	return n.value
}

// SubscriberEmail is a syntactically valid email address.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates s as an email address.
func ParseSubscriberEmail(s string) (SubscriberEmail, error) {
	if err := validation.ValidateVar("email", s, "required,email"); err != nil {
		return SubscriberEmail{}, err
	}
	return SubscriberEmail{value: s}, nil
}

// String returns the address.
func (e SubscriberEmail) String() string {
	return e.value
}

// NewSubscriber is a validated registration request.
type NewSubscriber struct {
	Email SubscriberEmail
	Name  SubscriberName
}

// ParseNewSubscriber validates raw form values. The returned error is a
// *validation.RequestValidationError.
func ParseNewSubscriber(name, email string) (NewSubscriber, error) {
	parsedName, err := ParseSubscriberName(name)
	if err != nil {
		return NewSubscriber{}, err
	}
	parsedEmail, err := ParseSubscriberEmail(email)
	if err != nil {
		return NewSubscriber{}, err
	}
	return NewSubscriber{Email: parsedEmail, Name: parsedName}, nil
}

// Subscriber is a persisted subscription row.
type Subscriber struct {
	ID           uuid.UUID          `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Status       SubscriptionStatus `json:"status"`
	SubscribedAt time.Time          `json:"subscribed_at"`
}
