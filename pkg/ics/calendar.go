package ics

import (
	"strings"
	"time"

	"voice-assistant-be/internal/entity"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	timeLayout  = "20060102T150405Z"
)

// Feed describes the calendar wrapper around the events.
type Feed struct {
	Name        string
	Description string
	UIDDomain   string
}

func DefaultFeed() Feed {
	return Feed{
		Name:        "Voice Assistant",
		Description: "Your personal voice assistant calendar",
		UIDDomain:   "voice-assistant.local",
	}
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// Render writes events as an iCalendar document with CRLF line endings. Times are
// emitted in UTC. Events without a start are skipped; a missing end falls back to
// the start.
func Render(feed Feed, events []*entity.Event, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//" + feed.Name + "//Calendar//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + escape(feed.Name),
		"X-WR-TIMEZONE:UTC",
		"X-WR-CALDESC:" + escape(feed.Description),
	}

	for _, e := range events {
		if e == nil || e.Start.IsZero() {
			continue
		}

		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		stamp := e.CreatedAt
		if stamp.IsZero() {
			stamp = now
		}
		summary := e.Summary
		if summary == "" {
			summary = "Untitled Event"
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+e.Id.String()+"@"+feed.UIDDomain,
			"DTSTAMP:"+formatTime(stamp),
			"DTSTART:"+formatTime(e.Start),
			"DTEND:"+formatTime(end),
			"SUMMARY:"+escape(summary),
			"STATUS:CONFIRMED",
			"SEQUENCE:0",
		)
		if e.Description != "" {
			lines = append(lines, "DESCRIPTION:"+escape(e.Description))
		}
		if e.Location != "" {
			lines = append(lines, "LOCATION:"+escape(e.Location))
		}
		lines = append(lines, "END:VEVENT")
	}

	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func escape(s string) string {
	return textEscaper.Replace(s)
}
