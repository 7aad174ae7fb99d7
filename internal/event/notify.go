package event

import (
	"fmt"

	"github.com/sharath018/event-resource-backend/internal/notification"
	"github.com/sharath018/event-resource-backend/internal/roster"
)

// buildBatch turns roster notices into push and email instructions.
func buildBatch(ev *Event, notices []roster.Notice) notification.Batch {
	var b notification.Batch
	for _, n := range notices {
		title, body := pushText(ev, n.Kind)
		b.Push = append(b.Push, notification.Push{
			Recipient: notification.Recipient{Kind: string(n.Participant.Kind), ID: n.Participant.ID},
			EventID:   ev.ID,
			Title:     title,
			Body:      body,
		})
		if n.Participant.Email == "" {
			continue
		}
		b.Emails = append(b.Emails, notification.Email{
			To:       n.Participant.Email,
			Template: notification.TemplateKind(n.Kind),
			Context: notification.EmailContext{
				RecipientName: n.Participant.Name,
				EventName:     ev.Name,
				Location:      ev.Location,
				Role:          n.Role,
				Date:          ev.Date,
				EndDate:       ev.EndDate,
			},
		})
	}
	return b
}

func pushText(ev *Event, kind roster.NoticeKind) (string, string) {
	when := ev.Date.Format("02 Jan 2006 15:04")
	switch kind {
	case roster.NoticeAdded:
		return "Added to " + ev.Name, fmt.Sprintf("You are on the roster of %s on %s.", ev.Name, when)
	case roster.NoticeRemoved:
		return "Removed from " + ev.Name, fmt.Sprintf("You are no longer on the roster of %s.", ev.Name)
	default:
		return ev.Name + " updated", fmt.Sprintf("%s now takes place on %s.", ev.Name, when)
	}
}
