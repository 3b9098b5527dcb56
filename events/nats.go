// Package events forwards committed engine events to external subscribers.
package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"okinoko_vote/contract/dao"
)

// DefaultSubjectPrefix is used when no prefix is configured.
// Subject: okinoko.vote.<kind>
const DefaultSubjectPrefix = "okinoko.vote"

// Publisher is the part of *nats.Conn the sink needs.
type Publisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSSink publishes every event as json on <prefix>.<kind>.
type NATSSink struct {
	pub    Publisher
	prefix string
}

func NewNATSSink(pub Publisher, prefix string) *NATSSink {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSSink{pub: pub, prefix: prefix}
}

// Connect dials url and wraps the connection. Close the returned conn when done.
func Connect(url, prefix string) (*NATSSink, *nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("okinoko-vote"))
	if err != nil {
		return nil, nil, fmt.Errorf("events: connect %s: %w", url, err)
	}
	return NewNATSSink(conn, prefix), conn, nil
}

// Subject returns the subject an event of the given kind is published on.
func (s *NATSSink) Subject(kind string) string {
	return s.prefix + "." + kind
}

func (s *NATSSink) Publish(ctx context.Context, ev dao.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := dao.MarshalEvent(ev)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", ev.Kind(), err)
	}
	msg := nats.NewMsg(s.Subject(ev.Kind()))
	msg.Data = data
	msg.Header.Set("Okinoko-Event", ev.String())
	if err := s.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", msg.Subject, err)
	}
	return nil
}
