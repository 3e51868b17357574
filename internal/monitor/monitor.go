// Package monitor polls a group for its newest post and relays the ones
// that match the keywords.
package monitor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"fbgroup-notifier/internal/filter"
	"fbgroup-notifier/internal/logging"
	"fbgroup-notifier/internal/notifier"
	"fbgroup-notifier/internal/scraper"
)

// DefaultInterval is both the poll period and the retry delay after a timeout.
const DefaultInterval = 10 * time.Second

var logger = logging.GetModuleLogger("monitor")

// Group is the part of a scraper the loop drives.
type Group interface {
	ToGroup(ctx context.Context, groupID string, sort scraper.Sort) error
	FetchPost(ctx context.Context) (scraper.Post, error)
}

type Options struct {
	GroupID  string
	Sort     scraper.Sort
	Keywords []string
	// Message is the notification template
	Message  string
	Interval time.Duration
	Clock    Clock
}

type Monitor struct {
	group    Group
	sender   notifier.Sender
	clock    Clock
	groupID  string
	sort     scraper.Sort
	keywords []string
	message  string
	interval time.Duration

	// id of the post seen on the previous poll
	cursor    string
	hasCursor bool
}

func New(group Group, sender notifier.Sender, opts Options) *Monitor {
	m := &Monitor{
		group:    group,
		sender:   sender,
		clock:    opts.Clock,
		groupID:  opts.GroupID,
		sort:     opts.Sort,
		keywords: opts.Keywords,
		message:  opts.Message,
		interval: opts.Interval,
	}
	if m.clock == nil {
		m.clock = NewRealClock()
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	return m
}

// Cursor returns the last seen post id.
func (m *Monitor) Cursor() (string, bool) {
	return m.cursor, m.hasCursor
}

// Run polls until ctx is done or a non transient error occurs.
// Navigation timeouts are retried forever.
func (m *Monitor) Run(ctx context.Context) error {
	logger.Infof("🚀 Watching group %s (%s), keywords: %v", m.groupID, m.sort, m.keywords)

	for {
		err := m.poll(ctx)
		switch {
		case errors.Is(err, scraper.ErrTimeout):
			logger.WithError(err).Warn("⏱️ Group page timed out")
		case err != nil:
			return err
		}

		logger.Infof("⏳ Waiting %v...", m.interval)
		if err := m.clock.Sleep(ctx, m.interval); err != nil {
			return err
		}
		logger.Info("🔄 Refreshing page...")
	}
}

func (m *Monitor) poll(ctx context.Context) error {
	if err := m.group.ToGroup(ctx, m.groupID, m.sort); err != nil {
		return err
	}

	post, err := m.group.FetchPost(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch latest post")
	}
	logger.WithFields(logrus.Fields{
		"id":           post.ID,
		"url":          post.URL,
		"listing_text": post.ListingText,
	}).Infof("📄 Latest post: %s", post.Content)

	if m.hasCursor && m.cursor != post.ID {
		logger.Info("🆕 NEW POST!")
		if filter.Match(m.keywords, post) {
			logger.Info("🎯 Keyword found!")
			if err := m.notify(ctx, post); err != nil {
				return err
			}
		}
	}

	m.cursor = post.ID
	m.hasCursor = true
	return nil
}

func (m *Monitor) notify(ctx context.Context, post scraper.Post) error {
	logger.Info("📤 Sending notification...")
	if err := m.sender.Send(ctx, notifier.Format(m.message, post)); err != nil {
		logger.WithError(err).Error("❌ Failed to send notification")
		return errors.Wrap(err, "send notification")
	}
	logger.Info("✅ Notification sent.")
	return nil
}
