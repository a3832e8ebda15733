package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Additional-Code/orderdesk/internal/entity"
	userrepo "github.com/Additional-Code/orderdesk/internal/repository/user"
)

// Event names the lifecycle event that triggers a notification. The value is stored as the
// notification type.
type Event string

const (
	EventOrderCreated   Event = "order_created"
	EventOrderUpdate    Event = "order_update"
	EventUserRegistered Event = "user_registered"
	EventSystem         Event = "system"
)

// ErrNoRecipient is reported when the policy cannot resolve anyone to notify.
var ErrNoRecipient = errors.New("no notification recipient")

// UserFinder looks up users by role.
type UserFinder interface {
	FirstByRole(ctx context.Context, role string) (*entity.User, error)
}

// Trigger describes one event to notify about.
type Trigger struct {
	Event Event
	// SubjectUserID is the user the event is about: the submitter of a new order, the owner
	// of an updated order, or the account whose status changed.
	SubjectUserID int64
	Message       string
}

// Policy decides who receives the notification for a trigger.
//
//	order_created   -> first admin, else the submitter
//	order_update    -> the order owner
//	user_registered -> first admin
//	system          -> the affected account
type Policy struct {
	users UserFinder
}

// NewPolicy builds a Policy backed by users.
func NewPolicy(users UserFinder) *Policy {
	return &Policy{users: users}
}

// Recipient resolves the user id to notify.
func (p *Policy) Recipient(ctx context.Context, t Trigger) (int64, error) {
	switch t.Event {
	case EventOrderCreated:
		admin, err := p.firstAdmin(ctx)
		if err == nil {
			return admin, nil
		}
		if !errors.Is(err, ErrNoRecipient) {
			return 0, err
		}
		return p.subject(t)
	case EventUserRegistered:
		return p.firstAdmin(ctx)
	case EventOrderUpdate, EventSystem:
		return p.subject(t)
	default:
		return 0, fmt.Errorf("unknown notification event %q", t.Event)
	}
}

func (p *Policy) firstAdmin(ctx context.Context) (int64, error) {
	admin, err := p.users.FirstByRole(ctx, entity.RoleAdmin)
	if errors.Is(err, userrepo.ErrNotFound) {
		return 0, ErrNoRecipient
	}
	if err != nil {
		return 0, fmt.Errorf("find admin: %w", err)
	}
	return admin.ID, nil
}

func (p *Policy) subject(t Trigger) (int64, error) {
	if t.SubjectUserID <= 0 {
		return 0, ErrNoRecipient
	}
	return t.SubjectUserID, nil
}
